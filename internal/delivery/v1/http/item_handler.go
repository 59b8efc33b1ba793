package http

import (
	"net/http"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ItemHandler struct {
	wardrobeUC usecase.WardrobeUC
	logger     logger.Logger
}

func NewItemHandler(wardrobeUC usecase.WardrobeUC, logger logger.Logger) *ItemHandler {
	return &ItemHandler{wardrobeUC: wardrobeUC, logger: logger}
}

// itemResponse — вещь гардероба, отдаваемая клиенту.
type itemResponse struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	Subcategory  string    `json:"subcategory,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	ColorHex     string    `json:"color_hex,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Price        *string   `json:"price,omitempty"`
	OriginalURL  string    `json:"original_url"`
	ProcessedURL *string   `json:"processed_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func newItemResponse(item *usecase.ItemInfo) *itemResponse {
	return &itemResponse{
		ID:           item.ID,
		Category:     item.Category,
		Subcategory:  item.Subcategory,
		Brand:        item.Brand,
		ColorHex:     item.ColorHex,
		Notes:        item.Notes,
		Price:        formatPrice(item.Price),
		OriginalURL:  item.OriginalURL,
		ProcessedURL: item.ProcessedURL,
		CreatedAt:    item.CreatedAt,
	}
}

func newArrItemResponse(items []usecase.ItemInfo) []itemResponse {
	result := make([]itemResponse, 0, len(items))
	for i := range items {
		result = append(result, *newItemResponse(&items[i]))
	}

	return result
}

// getItems
//
//	@Summary		Гардероб владельца
//	@Description	Возвращает все вещи гардероба, новые первыми
//	@Tags			wardrobe
//	@Produce		json
//	@Param			X-Owner-ID	header		string			true	"Идентификатор владельца гардероба"
//	@Success		200			{array}		itemResponse	"Вещи гардероба"
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/wardrobe/items [get]
func (h *ItemHandler) getItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.wardrobeUC.GetItems(r.Context(), ownerID(r))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newArrItemResponse(items))
}

// updateItem
//
//	@Summary		Частичное обновление вещи
//	@Description	Меняет только переданные поля; остальные остаются как были
//	@Tags			wardrobe
//	@Accept			json
//	@Produce		json
//	@Param			X-Owner-ID	header		string				true	"Идентификатор владельца гардероба"
//	@Param			itemID		path		string				true	"Идентификатор вещи"
//	@Param			request		body		updateItemRequest	true	"Изменяемые поля"
//	@Success		200			{object}	itemResponse		"Обновленная вещь"
//	@Failure		400			{object}	ErrorResponse		"Ошибка валидации"
//	@Failure		404			{object}	ErrorResponse		"Вещь не найдена"
//	@Router			/wardrobe/items/{itemID} [patch]
func (h *ItemHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	upd, err := parsePatch(ownerID(r), itemID, &req)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	item, err := h.wardrobeUC.UpdateItem(r.Context(), upd)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newItemResponse(item))
}

// deleteItem
//
//	@Summary		Удаление вещи
//	@Description	Убирает вещь из гардероба вместе с ее изображениями и вектором
//	@Tags			wardrobe
//	@Param			X-Owner-ID	header	string	true	"Идентификатор владельца гардероба"
//	@Param			itemID		path	string	true	"Идентификатор вещи"
//	@Success		204			"Вещь удалена"
//	@Failure		404			{object}	ErrorResponse	"Вещь не найдена"
//	@Router			/wardrobe/items/{itemID} [delete]
func (h *ItemHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.wardrobeUC.DeleteItem(r.Context(), ownerID(r), chi.URLParam(r, "itemID")); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
