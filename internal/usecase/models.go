package usecase

import (
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
)

// INGEST USECASE

// GarmentUpload представляет файл, загруженный через multipart/form-data.
type GarmentUpload struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// AttachImageReq — запрос на прикрепление фото к сессии.
type AttachImageReq struct {
	SessionID string
	Upload    GarmentUpload
}

// Notice — мягкая, не блокирующая пайплайн ошибка, показанная пользователю.
type Notice struct {
	Kind    string
	Message string
}

// SessionView — снимок состояния сессии для внешнего использования.
type SessionView struct {
	SessionID      string
	OwnerID        string
	State          domain.SessionState
	Generation     uint64
	RemovalEnabled bool
	Progress       int
	ColorHex       string
	Notices        []Notice
	Previews       map[domain.ArtifactKind]string
}

// PreviewImage — байты превью, доступные по хэндлу.
type PreviewImage struct {
	Data     []byte
	MimeType string
}

// ItemDraft — поля формы, собираемые перед сабмитом.
type ItemDraft struct {
	Category    string
	Subcategory string
	Brand       string
	ColorHex    string
	Notes       string
	Price       *int64 // копейки
}

// SubmitItemReq — запрос на создание вещи из текущей сессии.
type SubmitItemReq struct {
	SessionID string
	Draft     ItemDraft
}

// WARDROBE USECASE

// CreateItemReq — запрос на создание вещи с уже загруженными артефактами.
type CreateItemReq struct {
	OwnerID      string
	Draft        ItemDraft
	OriginalKey  string
	OriginalURL  string
	ProcessedKey *string
	ProcessedURL *string
	Embedding    []float32
	ModelVersion string
}

// UpdateItemReq — частичное обновление вещи; nil-поля не меняются.
type UpdateItemReq struct {
	OwnerID     string
	ItemID      string
	Category    *string
	Subcategory *string
	Brand       *string
	ColorHex    *string
	Notes       *string
	Price       *int64
}

// ItemInfo — DTO с информацией о вещи для внешнего использования.
type ItemInfo struct {
	ID           string
	OwnerID      string
	Category     string
	Subcategory  string
	Brand        string
	ColorHex     string
	Notes        string
	Price        *int64
	OriginalURL  string
	ProcessedURL *string
	CreatedAt    time.Time
}

// INFRASTRUCTURE

// CompressReq — запрос на пережатие изображения.
type CompressReq struct {
	Data     []byte
	MimeType string
}

// CompressRes — результат пережатия; Compressed=false означает passthrough.
type CompressRes struct {
	Data       []byte
	MimeType   string
	Compressed bool
	Width      int
	Height     int
}

// RemoveBackgroundReq — запрос на удаление фона.
// OnProgress вызывается с реальным прогрессом движка (0..100), может быть nil.
type RemoveBackgroundReq struct {
	Data       []byte
	MimeType   string
	OnProgress func(int)
}

// RemoveBackgroundRes — буфер без фона плюс вектор вещи от модели.
type RemoveBackgroundRes struct {
	Data         []byte
	MimeType     string
	Embedding    []float32
	ModelVersion string
}

// ArtifactUpload — один буфер сессии, отправляемый в S3.
type ArtifactUpload struct {
	Kind     domain.ArtifactKind
	Data     []byte
	MimeType string
}

// UploadArtifactsReq — запрос на загрузку артефактов сессии.
type UploadArtifactsReq struct {
	OwnerID   string
	Artifacts []ArtifactUpload
}

// UploadArtifactsRes — ключи и публичные URL загруженных объектов по виду артефакта.
type UploadArtifactsRes struct {
	Keys map[domain.ArtifactKind]string
	URLs map[domain.ArtifactKind]string
}

type WriteRawMessageReq struct {
	ItemID  string
	Payload []byte
}

// MAPPERS

func NewGarmentUpload(data []byte, mimeType string, size int64, name string) *GarmentUpload {
	return &GarmentUpload{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewAttachImageReq(sessionID string, upload *GarmentUpload) *AttachImageReq {
	return &AttachImageReq{
		SessionID: sessionID,
		Upload:    *upload,
	}
}

func NewSubmitItemReq(sessionID string, draft ItemDraft) *SubmitItemReq {
	return &SubmitItemReq{
		SessionID: sessionID,
		Draft:     draft,
	}
}

func NewUploadArtifactsReq(ownerID string, artifacts []ArtifactUpload) *UploadArtifactsReq {
	return &UploadArtifactsReq{
		OwnerID:   ownerID,
		Artifacts: artifacts,
	}
}

func NewUploadArtifactsRes(keys map[domain.ArtifactKind]string, urls map[domain.ArtifactKind]string) *UploadArtifactsRes {
	return &UploadArtifactsRes{Keys: keys, URLs: urls}
}

func NewRemoveBackgroundRes(data []byte, mimeType string, embedding []float32, modelVersion string) *RemoveBackgroundRes {
	return &RemoveBackgroundRes{
		Data:         data,
		MimeType:     mimeType,
		Embedding:    embedding,
		ModelVersion: modelVersion,
	}
}

func NewWriteRawMessageReq(itemID string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ItemID:  itemID,
		Payload: payload,
	}
}

// NewItemInfo собирает DTO из доменной сущности.
func NewItemInfo(item *domain.WardrobeItem) *ItemInfo {
	return &ItemInfo{
		ID:           item.ID,
		OwnerID:      item.OwnerID,
		Category:     item.Category,
		Subcategory:  item.Subcategory,
		Brand:        item.Brand,
		ColorHex:     item.ColorHex,
		Notes:        item.Notes,
		Price:        item.Price,
		OriginalURL:  item.OriginalURL,
		ProcessedURL: item.ProcessedURL,
		CreatedAt:    item.CreatedAt,
	}
}

func NewArrItemInfo(items []domain.WardrobeItem) []ItemInfo {
	result := make([]ItemInfo, 0, len(items))
	for i := range items {
		result = append(result, *NewItemInfo(&items[i]))
	}

	return result
}
