package domain

import (
	"strings"
	"time"
)

// TempIDPrefix помечает оптимистичную запись, ещё не подтверждённую сервером.
const TempIDPrefix = "tmp-"

// WardrobeItem описывает вещь в гардеробе
type WardrobeItem struct {
	ID           string // uuid; у оптимистичных записей префикс tmp-
	OwnerID      string
	Category     string
	Subcategory  string
	Brand        string
	ColorHex     string
	Notes        string
	Price        *int64 // Цена хранится в копейках, nil — не указана
	OriginalKey  string
	OriginalURL  string
	ProcessedKey *string
	ProcessedURL *string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func NewWardrobeItem(id string, ownerID string, category string) *WardrobeItem {
	return &WardrobeItem{
		ID:       id,
		OwnerID:  ownerID,
		Category: category,
	}
}

// IsTemporary сообщает, что запись создана оптимистично и ждёт подтверждения.
func (w *WardrobeItem) IsTemporary() bool {
	return strings.HasPrefix(w.ID, TempIDPrefix)
}
