package http

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParsePriceToCents тестирует разбор цены из строки в копейки.
func TestParsePriceToCents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
		err   error
	}{
		{name: "rubles and kopecks", input: "599.99", want: 59999},
		{name: "whole rubles", input: "600", want: 60000},
		{name: "zero", input: "0", want: 0},
		{name: "one decimal place", input: "10.5", want: 1050},
		{name: "single kopeck", input: "0.01", want: 1},
		{name: "empty string", input: "", err: errors.New("price is empty")},
		{name: "blank string", input: "   ", err: errors.New("price is empty")},
		{name: "not a number", input: "abc", err: e.ErrInvalidPrice},
		{name: "negative", input: "-5", err: e.ErrInvalidPrice},
		{name: "too many decimal places", input: "599.999", err: e.ErrPricePrecision},
		{name: "over the limit", input: "200000000000", err: e.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePriceToCents(tt.input)

			if tt.err != nil {
				require.Error(t, err)
				assert.EqualError(t, err, tt.err.Error())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestFormatPrice тестирует обратный перевод копеек в строку с двумя знаками.
func TestFormatPrice(t *testing.T) {
	assert.Nil(t, formatPrice(nil))

	tests := []struct {
		cents int64
		want  string
	}{
		{cents: 59999, want: "599.99"},
		{cents: 60000, want: "600.00"},
		{cents: 1050, want: "10.50"},
		{cents: 1, want: "0.01"},
		{cents: 0, want: "0.00"},
	}

	for _, tt := range tests {
		got := formatPrice(&tt.cents)
		require.NotNil(t, got)
		assert.Equal(t, tt.want, *got)
	}
}

// TestToHTTPResponse тестирует маппинг ошибок приложения в статус и сообщение.
// Ошибки валидации уходят клиенту дословно, остальные — текстом сентинела.
func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "bare validation error",
			err:      e.ErrCategoryRequired,
			wantCode: http.StatusBadRequest,
			wantMsg:  "category is required",
		},
		{
			name:     "wrapped validation error keeps dynamic text",
			err:      fmt.Errorf("file size 11.0 MB exceeds the 10 MB limit: %w", e.ErrFileTooLarge),
			wantCode: http.StatusBadRequest,
			wantMsg:  "file size 11.0 MB exceeds the 10 MB limit: file is too large",
		},
		{
			name:     "session not found hides the operation prefix",
			err:      e.Wrap("IngestUseCase.GetSession", e.ErrSessionNotFound),
			wantCode: http.StatusNotFound,
			wantMsg:  "session not found",
		},
		{
			name:     "preview not found",
			err:      e.Wrap("IngestUseCase.GetPreview", e.ErrPreviewNotFound),
			wantCode: http.StatusNotFound,
			wantMsg:  "preview not found",
		},
		{
			name:     "item not found",
			err:      e.Wrap("WardrobeUseCase.UpdateItem", e.ErrItemNotFound),
			wantCode: http.StatusNotFound,
			wantMsg:  "item not found",
		},
		{
			name:     "closed session conflicts",
			err:      e.Wrap("IngestUseCase.AttachImage", e.ErrSessionClosed),
			wantCode: http.StatusConflict,
			wantMsg:  "session is closed",
		},
		{
			name:     "submit in progress conflicts",
			err:      e.Wrap("IngestUseCase.Submit", e.ErrSubmitInProgress),
			wantCode: http.StatusConflict,
			wantMsg:  "submit is already in progress",
		},
		{
			name:     "unknown error never leaks details",
			err:      errors.New("pq: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := ToHTTPResponse(tt.err)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

// TestWriteError тестирует JSON-тело ошибки.
func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, e.Wrap("IngestUseCase.GetSession", e.ErrSessionNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"code":404,"message":"session not found"}`, w.Body.String())
}

// TestParseDraft тестирует сборку черновика вещи из тела сабмита.
func TestParseDraft(t *testing.T) {
	t.Run("trims fields and parses price", func(t *testing.T) {
		draft, err := parseDraft(&submitItemRequest{
			Category:    "  Jacket  ",
			Subcategory: " top ",
			Brand:       " Acme ",
			ColorHex:    " #112233 ",
			Notes:       "  notes keep spaces  ",
			Price:       "599.99",
		})
		require.NoError(t, err)

		assert.Equal(t, "Jacket", draft.Category)
		assert.Equal(t, "top", draft.Subcategory)
		assert.Equal(t, "Acme", draft.Brand)
		assert.Equal(t, "#112233", draft.ColorHex)
		assert.Equal(t, "  notes keep spaces  ", draft.Notes)
		require.NotNil(t, draft.Price)
		assert.Equal(t, int64(59999), *draft.Price)
	})

	t.Run("empty price stays nil", func(t *testing.T) {
		draft, err := parseDraft(&submitItemRequest{Category: "jacket"})
		require.NoError(t, err)
		assert.Nil(t, draft.Price)
	})

	t.Run("bad price fails the draft", func(t *testing.T) {
		_, err := parseDraft(&submitItemRequest{Category: "jacket", Price: "abc"})
		assert.ErrorIs(t, err, e.ErrInvalidPrice)
	})
}

// TestParsePatch тестирует перевод JSON-патча в запрос обновления.
func TestParsePatch(t *testing.T) {
	t.Run("carries pointers and parses price", func(t *testing.T) {
		category := "jacket"
		price := "10.50"

		upd, err := parsePatch("owner-1", "itm-1", &updateItemRequest{
			Category: &category,
			Price:    &price,
		})
		require.NoError(t, err)

		assert.Equal(t, "owner-1", upd.OwnerID)
		assert.Equal(t, "itm-1", upd.ItemID)
		require.NotNil(t, upd.Category)
		assert.Equal(t, "jacket", *upd.Category)
		assert.Nil(t, upd.Brand)
		require.NotNil(t, upd.Price)
		assert.Equal(t, int64(1050), *upd.Price)
	})

	t.Run("absent price stays nil", func(t *testing.T) {
		upd, err := parsePatch("owner-1", "itm-1", &updateItemRequest{})
		require.NoError(t, err)
		assert.Nil(t, upd.Price)
	})

	t.Run("blank price string stays nil", func(t *testing.T) {
		price := "   "

		upd, err := parsePatch("owner-1", "itm-1", &updateItemRequest{Price: &price})
		require.NoError(t, err)
		assert.Nil(t, upd.Price)
	})

	t.Run("bad price fails the patch", func(t *testing.T) {
		price := "-1"

		_, err := parsePatch("owner-1", "itm-1", &updateItemRequest{Price: &price})
		assert.ErrorIs(t, err, e.ErrInvalidPrice)
	})
}

// TestOwnerID тестирует извлечение владельца: заголовок важнее query-параметра.
func TestOwnerID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/wardrobe/items?owner_id=from-query", nil)
	r.Header.Set("X-Owner-ID", "from-header")
	assert.Equal(t, "from-header", ownerID(r))

	r = httptest.NewRequest(http.MethodGet, "/api/v1/wardrobe/items?owner_id=from-query", nil)
	assert.Equal(t, "from-query", ownerID(r))

	r = httptest.NewRequest(http.MethodGet, "/api/v1/wardrobe/items", nil)
	assert.Equal(t, "", ownerID(r))
}

// TestEnsureMultipartForm тестирует проверку типа содержимого до разбора формы.
func TestEnsureMultipartForm(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{}`)))
	r.Header.Set("Content-Type", "application/json")
	assert.ErrorIs(t, ensureMultipartForm(r, 32<<20), e.ErrExpectedMultipart)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("enabled", "true"))
	require.NoError(t, mw.Close())

	r = httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	assert.NoError(t, ensureMultipartForm(r, 32<<20))
}

// TestReadFile тестирует чтение файла из формы: лимит размера и выбор типа.
func TestReadFile(t *testing.T) {
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x01}, 32)...)

	t.Run("declared content type wins", func(t *testing.T) {
		fh := newFileHeader(t, "garment.jpg", jpeg, "image/jpeg")

		data, mimeType, err := readFile(fh, 1<<20)
		require.NoError(t, err)
		assert.Equal(t, jpeg, data)
		assert.Equal(t, "image/jpeg", mimeType)
	})

	t.Run("missing content type falls back to sniffing", func(t *testing.T) {
		fh := newFileHeader(t, "garment.jpg", jpeg, "")

		data, mimeType, err := readFile(fh, 1<<20)
		require.NoError(t, err)
		assert.Equal(t, jpeg, data)
		assert.Equal(t, "image/jpeg", mimeType)
	})

	t.Run("oversize file is rejected with actual size", func(t *testing.T) {
		big := make([]byte, 1<<20+1)
		fh := newFileHeader(t, "garment.jpg", big, "image/jpeg")

		_, _, err := readFile(fh, 1<<20)
		require.ErrorIs(t, err, e.ErrFileTooLarge)
		assert.Contains(t, err.Error(), "file size 1.0 MB exceeds the 1 MB limit")
	})
}

// newFileHeader собирает multipart-форму с одним файлом и возвращает его заголовок.
func newFileHeader(t *testing.T, filename string, data []byte, contentType string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, r.ParseMultipartForm(32<<20))

	return r.MultipartForm.File["image"][0]
}
