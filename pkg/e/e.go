package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")

	// Ошибки валидации входного файла
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrFileTooLarge         = fmt.Errorf("file is too large")
	ErrEmptyFile            = fmt.Errorf("file is empty")

	// Ошибки сессии загрузки
	ErrSessionNotFound  = fmt.Errorf("session not found")
	ErrSessionClosed    = fmt.Errorf("session is closed")
	ErrNoImageAttached  = fmt.Errorf("no image attached")
	ErrSubmitInProgress = fmt.Errorf("submit is already in progress")
	ErrPreviewNotFound  = fmt.Errorf("preview not found")

	// Классификация ошибок удаления фона
	ErrRemovalUnsupportedFormat = fmt.Errorf("background removal: unsupported image format")
	ErrRemovalResource          = fmt.Errorf("background removal: not enough resources")
	ErrRemovalNetwork           = fmt.Errorf("background removal: service unreachable")
	ErrRemovalTimeout           = fmt.Errorf("background removal: timed out")
	ErrRemovalUnknown           = fmt.Errorf("background removal: failed")

	// Внутренние ошибки с векторами
	ErrVectorEmbeddingEmpty = fmt.Errorf("vector embedding is empty")

	// 400 Bad Request
	ErrCategoryRequired  = fmt.Errorf("category is required")
	ErrOwnerRequired     = fmt.Errorf("owner id is required")
	ErrInvalidColor      = fmt.Errorf("color must be a #RRGGBB hex string")
	ErrInvalidPrice      = fmt.Errorf("invalid price")
	ErrPricePrecision    = fmt.Errorf("price must have at most 2 decimal places")
	ErrMissingFields     = fmt.Errorf("missing required fields")
	ErrExpectedMultipart = fmt.Errorf("expected multipart/form-data")
	ErrStatusBadRequest  = fmt.Errorf("bad request")

	// 404 Not Found
	ErrItemNotFound = fmt.Errorf("item not found")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
