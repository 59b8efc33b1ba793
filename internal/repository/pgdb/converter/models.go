package converter

import "time"

// ItemModel представляет запись таблицы wardrobe_items в PostgreSQL.
type ItemModel struct {
	ID           string     `db:"id"`
	OwnerID      string     `db:"owner_id"`
	Category     string     `db:"category"`
	Subcategory  string     `db:"subcategory"`
	Brand        string     `db:"brand"`
	ColorHex     string     `db:"color_hex"`
	Notes        string     `db:"notes"`
	Price        *int64     `db:"price"`
	OriginalKey  string     `db:"original_key"`
	OriginalURL  string     `db:"original_url"`
	ProcessedKey *string    `db:"processed_key"`
	ProcessedURL *string    `db:"processed_url"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	ItemID      string     `db:"item_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
