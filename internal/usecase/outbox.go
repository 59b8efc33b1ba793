package usecase

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
	"github.com/google/uuid"
)

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	ItemCreated OutboxEventType = "item_created"
	ItemDeleted OutboxEventType = "item_deleted"
)

// OutboxEvent — событие жизненного цикла вещи, записанное в одной транзакции
// с изменением и асинхронно отправляемое в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	ItemID      string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func NewOutboxEvent(eventType OutboxEventType, itemID string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		ItemID:    itemID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}
}

// itemEventPayload — JSON-схема сообщения о вещи для внешних консьюмеров.
type itemEventPayload struct {
	EventType  OutboxEventType `json:"event_type"`
	ItemID     string          `json:"item_id"`
	OwnerID    string          `json:"owner_id"`
	Category   string          `json:"category"`
	ColorHex   string          `json:"color_hex,omitempty"`
	OccurredAt int64           `json:"occurred_at"`
}

// MarshalItemEvent сериализует событие о вещи в JSON-полезную нагрузку.
func MarshalItemEvent(eventType OutboxEventType, item *domain.WardrobeItem) ([]byte, error) {
	return json.Marshal(itemEventPayload{
		EventType:  eventType,
		ItemID:     item.ID,
		OwnerID:    item.OwnerID,
		Category:   item.Category,
		ColorHex:   item.ColorHex,
		OccurredAt: time.Now().UTC().UnixNano(),
	})
}
