package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// submitItemRequest — тело запроса на сабмит сессии. Цена передаётся строкой,
// чтобы не терять копейки на float.
type submitItemRequest struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Brand       string `json:"brand"`
	ColorHex    string `json:"color_hex"`
	Notes       string `json:"notes"`
	Price       string `json:"price"`
}

// updateItemRequest — JSON-патч вещи; отсутствующие поля не меняются.
type updateItemRequest struct {
	Category    *string `json:"category"`
	Subcategory *string `json:"subcategory"`
	Brand       *string `json:"brand"`
	ColorHex    *string `json:"color_hex"`
	Notes       *string `json:"notes"`
	Price       *string `json:"price"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// badRequestErrs — ошибки валидации; их текст уходит клиенту как есть,
// поэтому usecase возвращает их без префикса операции.
var badRequestErrs = []error{
	e.ErrStatusBadRequest,
	e.ErrExpectedMultipart,
	e.ErrMissingFields,
	e.ErrCategoryRequired,
	e.ErrOwnerRequired,
	e.ErrInvalidColor,
	e.ErrInvalidPrice,
	e.ErrPricePrecision,
	e.ErrUnsupportedMediaType,
	e.ErrFileTooLarge,
	e.ErrEmptyFile,
	e.ErrNoImageAttached,
}

func ToHTTPResponse(err error) (int, string) {
	for _, target := range badRequestErrs {
		if errors.Is(err, target) {
			return http.StatusBadRequest, err.Error()
		}
	}

	switch {
	case errors.Is(err, e.ErrSessionNotFound):
		return http.StatusNotFound, e.ErrSessionNotFound.Error()
	case errors.Is(err, e.ErrPreviewNotFound):
		return http.StatusNotFound, e.ErrPreviewNotFound.Error()
	case errors.Is(err, e.ErrItemNotFound):
		return http.StatusNotFound, e.ErrItemNotFound.Error()
	case errors.Is(err, e.ErrSessionClosed):
		return http.StatusConflict, e.ErrSessionClosed.Error()
	case errors.Is(err, e.ErrSubmitInProgress):
		return http.StatusConflict, e.ErrSubmitInProgress.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ownerID извлекает идентификатор владельца гардероба из запроса.
// Авторизация живёт на шлюзе; сервис доверяет заголовку.
func ownerID(r *http.Request) string {
	if id := r.Header.Get("X-Owner-ID"); id != "" {
		return id
	}

	return r.URL.Query().Get("owner_id")
}

// decodeJSON читает JSON-тело запроса в dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

// parsePriceToCents converts a string like "599.99" or "600" to int64 cents.
// Returns error if:
// - invalid format
// - more than 2 decimal places
// - negative value
// - exceeds reasonable limit (e.g. 10^9 rubles)
func parsePriceToCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, errors.New("price is empty")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	// Reject negative
	if d.LessThan(decimal.Zero) {
		return 0, e.ErrInvalidPrice
	}

	// Enforce max value (e.g. 1 billion rubles = 100_000_000_000 cents)
	maxPrice := decimal.NewFromInt(1_000_000_000).Mul(decimal.NewFromInt(100)) // 1B rub in cents
	if d.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	// Check decimal places
	if d.Exponent() < -2 {
		return 0, e.ErrPricePrecision // "price must have at most 2 decimal places"
	}

	// Convert to cents: multiply by 100 and round
	cents := d.Mul(decimal.NewFromInt(100)).Round(0)

	// Safely convert to int64
	centsInt := cents.IntPart()
	if centsInt < 0 || centsInt > 9223372036854775807 { // int64 max, but we have maxPrice
		return 0, e.ErrInvalidPrice
	}

	return centsInt, nil
}

// formatPrice переводит копейки обратно в строку вида "599.99".
func formatPrice(cents *int64) *string {
	if cents == nil {
		return nil
	}

	s := decimal.NewFromInt(*cents).Div(decimal.NewFromInt(100)).StringFixed(2)

	return &s
}

// parseDraft собирает черновик вещи из запроса сабмита.
func parseDraft(req *submitItemRequest) (usecase.ItemDraft, error) {
	draft := usecase.ItemDraft{
		Category:    strings.TrimSpace(req.Category),
		Subcategory: strings.TrimSpace(req.Subcategory),
		Brand:       strings.TrimSpace(req.Brand),
		ColorHex:    strings.TrimSpace(req.ColorHex),
		Notes:       req.Notes,
	}

	if strings.TrimSpace(req.Price) != "" {
		cents, err := parsePriceToCents(req.Price)
		if err != nil {
			return draft, err
		}

		draft.Price = &cents
	}

	return draft, nil
}

// parsePatch переводит JSON-патч в запрос обновления вещи.
func parsePatch(ownerID string, itemID string, req *updateItemRequest) (*usecase.UpdateItemReq, error) {
	upd := &usecase.UpdateItemReq{
		OwnerID:     ownerID,
		ItemID:      itemID,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Brand:       req.Brand,
		ColorHex:    req.ColorHex,
		Notes:       req.Notes,
	}

	if req.Price != nil && strings.TrimSpace(*req.Price) != "" {
		cents, err := parsePriceToCents(*req.Price)
		if err != nil {
			return nil, err
		}

		upd.Price = &cents
	}

	return upd, nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

// readFile читает файл из формы. Тип берётся из заголовка части,
// при его отсутствии — сниффингом содержимого.
func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", fmt.Errorf(
			"file size %.1f MB exceeds the %d MB limit: %w",
			float64(len(data))/(1<<20),
			maxSize/(1<<20),
			e.ErrFileTooLarge,
		)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data[:min(len(data), 512)])
	}

	return data, mimeType, nil
}
