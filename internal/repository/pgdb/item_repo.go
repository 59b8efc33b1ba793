package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
	"github.com/DRSN-tech/wardrobe-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// itemColumns — полный набор колонок wardrobe_items в порядке сканирования.
const itemColumns = `
	id, owner_id, category, subcategory, brand, color_hex, notes, price,
	original_key, original_url, processed_key, processed_url, created_at, updated_at`

// ItemRepo реализует репозиторий вещей гардероба поверх PostgreSQL.
type ItemRepo struct {
	pool *pgxpool.Pool
	conv converter.ItemConverter
}

func NewItemRepo(pool *pgxpool.Pool, conv converter.ItemConverter) *ItemRepo {
	return &ItemRepo{
		pool: pool,
		conv: conv,
	}
}

// Create вставляет вещь в рамках транзакции из контекста.
// Идентификатор и created_at назначает база; tmp-значение клиента не сохраняется.
func (i *ItemRepo) Create(ctx context.Context, item *domain.WardrobeItem) (*domain.WardrobeItem, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := i.conv.ToModel(item)
	query := `
		INSERT INTO wardrobe_items (
			owner_id, category, subcategory, brand, color_hex, notes, price,
			original_key, original_url, processed_key, processed_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING` + itemColumns

	row := tx.QueryRow(ctx, query,
		model.OwnerID, model.Category, model.Subcategory, model.Brand,
		model.ColorHex, model.Notes, model.Price,
		model.OriginalKey, model.OriginalURL, model.ProcessedKey, model.ProcessedURL,
	)

	created, err := scanItemModel(row)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return i.conv.ToEntity(created), nil
}

// GetByID возвращает вещь владельца по идентификатору.
func (i *ItemRepo) GetByID(ctx context.Context, ownerID string, itemID string) (*domain.WardrobeItem, error) {
	query := `SELECT` + itemColumns + `
		FROM wardrobe_items
		WHERE id = $1 AND owner_id = $2`

	model, err := scanItemModel(i.pool.QueryRow(ctx, query, itemID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrItemNotFound)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return i.conv.ToEntity(model), nil
}

// ListByOwner возвращает гардероб владельца от новых вещей к старым.
func (i *ItemRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.WardrobeItem, error) {
	query := `SELECT` + itemColumns + `
		FROM wardrobe_items
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	rows, err := i.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models := make([]*converter.ItemModel, 0)
	for rows.Next() {
		model, err := scanItemModel(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		models = append(models, model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return i.conv.ToArrEntity(models), nil
}

// Update перезаписывает редактируемые поля вещи и возвращает свежую строку.
func (i *ItemRepo) Update(ctx context.Context, item *domain.WardrobeItem) (*domain.WardrobeItem, error) {
	model := i.conv.ToModel(item)
	query := `
		UPDATE wardrobe_items
		SET category = $3, subcategory = $4, brand = $5, color_hex = $6,
			notes = $7, price = $8, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING` + itemColumns

	row := i.pool.QueryRow(ctx, query,
		model.ID, model.OwnerID,
		model.Category, model.Subcategory, model.Brand, model.ColorHex,
		model.Notes, model.Price,
	)

	updated, err := scanItemModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrItemNotFound)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return i.conv.ToEntity(updated), nil
}

// Delete удаляет вещь владельца в рамках транзакции из контекста.
func (i *ItemRepo) Delete(ctx context.Context, ownerID string, itemID string) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM wardrobe_items WHERE id = $1 AND owner_id = $2`, itemID, ownerID)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrItemNotFound)
	}

	return nil
}

// scanItemModel читает одну строку wardrobe_items в модель.
func scanItemModel(row pgx.Row) (*converter.ItemModel, error) {
	var model converter.ItemModel
	err := row.Scan(
		&model.ID, &model.OwnerID, &model.Category, &model.Subcategory,
		&model.Brand, &model.ColorHex, &model.Notes, &model.Price,
		&model.OriginalKey, &model.OriginalURL, &model.ProcessedKey, &model.ProcessedURL,
		&model.CreatedAt, &model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}
