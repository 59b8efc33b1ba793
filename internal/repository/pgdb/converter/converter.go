package converter

import (
	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
)

// ItemConverter преобразует сущности WardrobeItem между domain и моделью PostgreSQL.
type ItemConverter interface {
	ToModel(entity *domain.WardrobeItem) *ItemModel
	ToEntity(model *ItemModel) *domain.WardrobeItem
	ToArrEntity(models []*ItemModel) []domain.WardrobeItem
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type itemConverter struct{}

func NewItemConverter() ItemConverter {
	return &itemConverter{}
}

func (c *itemConverter) ToModel(entity *domain.WardrobeItem) *ItemModel {
	if entity == nil {
		return nil
	}

	return &ItemModel{
		ID:           entity.ID,
		OwnerID:      entity.OwnerID,
		Category:     entity.Category,
		Subcategory:  entity.Subcategory,
		Brand:        entity.Brand,
		ColorHex:     entity.ColorHex,
		Notes:        entity.Notes,
		Price:        entity.Price,
		OriginalKey:  entity.OriginalKey,
		OriginalURL:  entity.OriginalURL,
		ProcessedKey: entity.ProcessedKey,
		ProcessedURL: entity.ProcessedURL,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
}

func (c *itemConverter) ToEntity(model *ItemModel) *domain.WardrobeItem {
	if model == nil {
		return nil
	}

	return &domain.WardrobeItem{
		ID:           model.ID,
		OwnerID:      model.OwnerID,
		Category:     model.Category,
		Subcategory:  model.Subcategory,
		Brand:        model.Brand,
		ColorHex:     model.ColorHex,
		Notes:        model.Notes,
		Price:        model.Price,
		OriginalKey:  model.OriginalKey,
		OriginalURL:  model.OriginalURL,
		ProcessedKey: model.ProcessedKey,
		ProcessedURL: model.ProcessedURL,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func (c *itemConverter) ToArrEntity(models []*ItemModel) []domain.WardrobeItem {
	result := make([]domain.WardrobeItem, 0, len(models))
	for _, model := range models {
		result = append(result, *c.ToEntity(model))
	}

	return result
}

type outboxEventConverter struct{}

func NewOutboxEventConverter() OutboxEventConverter {
	return &outboxEventConverter{}
}

func (c *outboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}

	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		ItemID:      entity.ItemID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (c *outboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}

	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		ItemID:      model.ItemID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c *outboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		result = append(result, c.ToEntity(model))
	}

	return result
}
