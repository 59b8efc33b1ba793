package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
)

type ItemRepository interface {
	Create(ctx context.Context, item *domain.WardrobeItem) (*domain.WardrobeItem, error)
	GetByID(ctx context.Context, ownerID string, itemID string) (*domain.WardrobeItem, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.WardrobeItem, error)
	Update(ctx context.Context, item *domain.WardrobeItem) (*domain.WardrobeItem, error)
	Delete(ctx context.Context, ownerID string, itemID string) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

type EmbeddingRepository interface {
	Upsert(ctx context.Context, vectors []domain.Embedding) error
	Delete(ctx context.Context, ids []string) error
}

type CacheRepository interface {
	GetItems(ctx context.Context, ownerID string) ([]domain.WardrobeItem, bool, error)
	SetItems(ctx context.Context, ownerID string, items []domain.WardrobeItem) error
	DeleteItems(ctx context.Context, ownerID string) error
}
