package converter

import "time"

// ItemRedisModel представляет вещь гардероба в JSON-кэше Redis.
type ItemRedisModel struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Category     string     `json:"category"`
	Subcategory  string     `json:"subcategory,omitempty"`
	Brand        string     `json:"brand,omitempty"`
	ColorHex     string     `json:"color_hex,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Price        *int64     `json:"price,omitempty"`
	OriginalKey  string     `json:"original_key"`
	OriginalURL  string     `json:"original_url"`
	ProcessedKey *string    `json:"processed_key,omitempty"`
	ProcessedURL *string    `json:"processed_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}
