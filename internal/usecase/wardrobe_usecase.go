package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/DRSN-tech/wardrobe-backend/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var colorHexRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// WardrobeUseCase реализует бизнес-логику гардероба: создание вещи из
// загруженных артефактов, список, частичное обновление и удаление.
// Мутации применяются оптимистично к локальному представлению и
// откатываются к снимку при ошибке сервера.
type WardrobeUseCase struct {
	itemRepo      ItemRepository
	outboxRepo    OutboxRepository
	dbPool        transaction.Transactional
	imagesInfra   ImagesInfra
	embeddingRepo EmbeddingRepository
	cacheRepo     CacheRepository
	collection    *CollectionView
	logger        logger.Logger
}

func NewWardrobeUC(
	itemRepo ItemRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	imagesInfra ImagesInfra,
	embeddingRepo EmbeddingRepository,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *WardrobeUseCase {
	return &WardrobeUseCase{
		itemRepo:      itemRepo,
		outboxRepo:    outboxRepo,
		dbPool:        dbPool,
		imagesInfra:   imagesInfra,
		embeddingRepo: embeddingRepo,
		cacheRepo:     cacheRepo,
		collection:    NewCollectionView(),
		logger:        logger,
	}
}

// CreateItem заводит вещь в гардеробе: временная запись появляется в
// представлении сразу, подтверждённая сервером заменяет её после коммита.
// Вещь и outbox-событие пишутся в одной транзакции.
func (w *WardrobeUseCase) CreateItem(ctx context.Context, req *CreateItemReq) (*ItemInfo, error) {
	const op = "WardrobeUseCase.CreateItem"

	var err error
	// Ошибки валидации возвращаются без префикса операции: их текст уходит клиенту.
	err = w.validateCreate(req)
	if err != nil {
		return nil, err
	}

	unlock := w.collection.Lock(req.OwnerID)
	defer unlock()

	// Снимок до мутации: при любой ошибке список вернётся бит-в-бит.
	snapshot := w.collection.Snapshot(req.OwnerID)

	temp := w.buildItem(req, domain.TempIDPrefix+uuid.NewString())
	w.collection.Insert(req.OwnerID, *temp)

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, w.dbPool)
	if err != nil {
		w.collection.Restore(req.OwnerID, snapshot)
		return nil, e.Wrap(op, err)
	}
	// Если произошла ошибка, откатываются и транзакция, и представление
	defer func() {
		if err != nil {
			if tx.IsActive() {
				tx.Rollback(ctx)
			}

			w.collection.Restore(req.OwnerID, snapshot)
		}
	}()
	ctx = tr.WithTx(ctx, tx.Transaction())

	// Идентификатор назначает сервер; tmp-значение живёт только в представлении
	item, err := w.itemRepo.Create(ctx, temp)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Событие для внешних консьюмеров уходит через outbox той же транзакцией
	payload, err := MarshalItemEvent(ItemCreated, item)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	_, err = w.outboxRepo.Create(ctx, NewOutboxEvent(ItemCreated, item.ID, payload))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Коммит изменений в бд
	err = tx.Commit(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	w.collection.Replace(req.OwnerID, temp.ID, *item)

	w.invalidateCache(op, req.OwnerID)
	w.upsertEmbedding(op, item, req.Embedding, req.ModelVersion)

	return NewItemInfo(item), nil
}

// GetItems возвращает гардероб владельца: сначала локальное представление,
// затем Redis, затем база с фоновым прогревом кэша.
func (w *WardrobeUseCase) GetItems(ctx context.Context, ownerID string) ([]ItemInfo, error) {
	const op = "WardrobeUseCase.GetItems"

	if strings.TrimSpace(ownerID) == "" {
		return nil, e.ErrOwnerRequired
	}

	if items, primed := w.collection.Items(ownerID); primed {
		return NewArrItemInfo(items), nil
	}

	// Поиск гардероба в хэше
	cached, ok, err := w.cacheRepo.GetItems(ctx, ownerID)
	if err != nil {
		w.logger.Warnf("Failed to read wardrobe cache: %v", e.Wrap(op, err))
	} else if ok {
		w.collection.Prime(ownerID, cached)
		return NewArrItemInfo(cached), nil
	}

	// Получение гардероба из БД
	items, err := w.itemRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	w.collection.Prime(ownerID, items)

	// Фоновое добавление гардероба в хэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := w.cacheRepo.SetItems(bgCtx, ownerID, items); err != nil {
			w.logger.Warnf("Failed to cache wardrobe in background: %v", e.Wrap(op, err))
		}
	}()

	return NewArrItemInfo(items), nil
}

// UpdateItem частично обновляет вещь; nil-поля запроса не меняются.
// Представление правится оптимистично и откатывается при ошибке базы.
func (w *WardrobeUseCase) UpdateItem(ctx context.Context, req *UpdateItemReq) (*ItemInfo, error) {
	const op = "WardrobeUseCase.UpdateItem"

	var err error
	err = w.validateUpdate(req)
	if err != nil {
		return nil, err
	}

	unlock := w.collection.Lock(req.OwnerID)
	defer unlock()

	snapshot := w.collection.Snapshot(req.OwnerID)

	current, inView, err := w.currentItem(ctx, req.OwnerID, req.ItemID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	patched := applyPatch(*current, req)
	if inView {
		w.collection.Replace(req.OwnerID, req.ItemID, patched)
	}

	updated, err := w.itemRepo.Update(ctx, &patched)
	if err != nil {
		if inView {
			w.collection.Restore(req.OwnerID, snapshot)
		}

		return nil, e.Wrap(op, err)
	}

	if inView {
		w.collection.Replace(req.OwnerID, req.ItemID, *updated)
	}

	w.invalidateCache(op, req.OwnerID)

	return NewItemInfo(updated), nil
}

// DeleteItem убирает вещь из гардероба вместе с её объектами в S3 и вектором.
// Запись и outbox-событие удаляются в одной транзакции.
func (w *WardrobeUseCase) DeleteItem(ctx context.Context, ownerID string, itemID string) error {
	const op = "WardrobeUseCase.DeleteItem"

	if strings.TrimSpace(ownerID) == "" {
		return e.ErrOwnerRequired
	}

	unlock := w.collection.Lock(ownerID)
	defer unlock()

	snapshot := w.collection.Snapshot(ownerID)

	current, inView, err := w.currentItem(ctx, ownerID, itemID)
	if err != nil {
		return e.Wrap(op, err)
	}

	if inView {
		w.collection.Remove(ownerID, itemID)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, w.dbPool)
	if err != nil {
		w.collection.Restore(ownerID, snapshot)
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil {
			if tx.IsActive() {
				tx.Rollback(ctx)
			}

			w.collection.Restore(ownerID, snapshot)
		}
	}()
	ctx = tr.WithTx(ctx, tx.Transaction())

	err = w.itemRepo.Delete(ctx, ownerID, itemID)
	if err != nil {
		return e.Wrap(op, err)
	}

	payload, err := MarshalItemEvent(ItemDeleted, current)
	if err != nil {
		return e.Wrap(op, err)
	}

	_, err = w.outboxRepo.Create(ctx, NewOutboxEvent(ItemDeleted, itemID, payload))
	if err != nil {
		return e.Wrap(op, err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}

	w.invalidateCache(op, ownerID)

	// Объекты вещи в MinIO больше никому не нужны
	keys := []string{current.OriginalKey}
	if current.ProcessedKey != nil {
		keys = append(keys, *current.ProcessedKey)
	}
	w.imagesInfra.CleanupImages(keys)

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := w.embeddingRepo.Delete(bgCtx, []string{itemID}); err != nil {
			w.logger.Warnf("Failed to delete item embedding: %v", e.Wrap(op, err))
		}
	}()

	return nil
}

// currentItem возвращает вещь из представления либо из базы.
func (w *WardrobeUseCase) currentItem(ctx context.Context, ownerID string, itemID string) (*domain.WardrobeItem, bool, error) {
	if item, ok := w.collection.Get(ownerID, itemID); ok {
		return &item, true, nil
	}

	item, err := w.itemRepo.GetByID(ctx, ownerID, itemID)
	if err != nil {
		return nil, false, err
	}

	return item, false, nil
}

// invalidateCache фоново убирает гардероб владельца из Redis.
func (w *WardrobeUseCase) invalidateCache(op string, ownerID string) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := w.cacheRepo.DeleteItems(bgCtx, ownerID); err != nil {
			w.logger.Warnf("Failed to invalidate wardrobe cache: %v", e.Wrap(op, err))
		}
	}()
}

// upsertEmbedding фоново сохраняет вектор вещи в Qdrant. Неуспех не фатален:
// вещь уже создана, вектор можно дозалить позже.
func (w *WardrobeUseCase) upsertEmbedding(op string, item *domain.WardrobeItem, vector []float32, modelVersion string) {
	if len(vector) == 0 {
		return
	}

	imagePath := item.OriginalKey
	if item.ProcessedKey != nil {
		imagePath = *item.ProcessedKey
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload := domain.NewPayload(item.ID, imagePath, modelVersion)
		embedding := domain.NewEmbedding(item.ID, vector, payload)

		if err := w.embeddingRepo.Upsert(bgCtx, []domain.Embedding{*embedding}); err != nil {
			w.logger.Warnf("Failed to upsert item embedding: %v", e.Wrap(op, err))
		}
	}()
}

// buildItem собирает доменную сущность из запроса на создание.
func (w *WardrobeUseCase) buildItem(req *CreateItemReq, id string) *domain.WardrobeItem {
	item := domain.NewWardrobeItem(id, req.OwnerID, req.Draft.Category)
	item.Subcategory = req.Draft.Subcategory
	item.Brand = req.Draft.Brand
	item.ColorHex = req.Draft.ColorHex
	item.Notes = req.Draft.Notes
	item.Price = req.Draft.Price
	item.OriginalKey = req.OriginalKey
	item.OriginalURL = req.OriginalURL
	item.ProcessedKey = req.ProcessedKey
	item.ProcessedURL = req.ProcessedURL
	item.CreatedAt = time.Now()

	return item
}

// validateCreate проверяет корректность запроса на создание вещи.
func (w *WardrobeUseCase) validateCreate(req *CreateItemReq) error {
	if strings.TrimSpace(req.OwnerID) == "" {
		return e.ErrOwnerRequired
	}

	if req.OriginalKey == "" {
		return e.ErrMissingFields
	}

	return validateDraft(&req.Draft)
}

// validateUpdate проверяет корректность запроса на обновление вещи.
func (w *WardrobeUseCase) validateUpdate(req *UpdateItemReq) error {
	if strings.TrimSpace(req.OwnerID) == "" {
		return e.ErrOwnerRequired
	}

	if req.Category != nil && strings.TrimSpace(*req.Category) == "" {
		return e.ErrCategoryRequired
	}

	if req.ColorHex != nil && *req.ColorHex != "" && !colorHexRe.MatchString(*req.ColorHex) {
		return e.ErrInvalidColor
	}

	if req.Price != nil && *req.Price < 0 {
		return e.ErrInvalidPrice
	}

	return nil
}

// validateDraft проверяет поля формы перед сохранением вещи.
func validateDraft(d *ItemDraft) error {
	if strings.TrimSpace(d.Category) == "" {
		return e.ErrCategoryRequired
	}

	if d.ColorHex != "" && !colorHexRe.MatchString(d.ColorHex) {
		return e.ErrInvalidColor
	}

	if d.Price != nil && *d.Price < 0 {
		return e.ErrInvalidPrice
	}

	return nil
}

// applyPatch накладывает непустые поля запроса на копию вещи.
func applyPatch(item domain.WardrobeItem, req *UpdateItemReq) domain.WardrobeItem {
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Subcategory != nil {
		item.Subcategory = *req.Subcategory
	}
	if req.Brand != nil {
		item.Brand = *req.Brand
	}
	if req.ColorHex != nil {
		item.ColorHex = *req.ColorHex
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.Price != nil {
		item.Price = req.Price
	}

	return item
}
