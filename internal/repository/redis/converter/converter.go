package converter

import "github.com/DRSN-tech/wardrobe-backend/internal/domain"

// WardrobeItemConverter преобразует вещи между domain и JSON-моделью Redis.
type WardrobeItemConverter interface {
	ToRedisModel(entity *domain.WardrobeItem) *ItemRedisModel
	ToEntity(model *ItemRedisModel) *domain.WardrobeItem
	ToArrRedisModel(entities []domain.WardrobeItem) []ItemRedisModel
	ToArrEntity(models []ItemRedisModel) []domain.WardrobeItem
}

type wardrobeItemConverter struct{}

func NewWardrobeItemConverter() WardrobeItemConverter {
	return &wardrobeItemConverter{}
}

func (c *wardrobeItemConverter) ToRedisModel(entity *domain.WardrobeItem) *ItemRedisModel {
	if entity == nil {
		return nil
	}

	return &ItemRedisModel{
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

func (c *wardrobeItemConverter) ToEntity(model *ItemRedisModel) *domain.WardrobeItem {
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

func (c *wardrobeItemConverter) ToArrRedisModel(entities []domain.WardrobeItem) []ItemRedisModel {
	result := make([]ItemRedisModel, 0, len(entities))
	for i := range entities {
		result = append(result, *c.ToRedisModel(&entities[i]))
	}

	return result
}

func (c *wardrobeItemConverter) ToArrEntity(models []ItemRedisModel) []domain.WardrobeItem {
	result := make([]domain.WardrobeItem, 0, len(models))
	for i := range models {
		result = append(result, *c.ToEntity(&models[i]))
	}

	return result
}
