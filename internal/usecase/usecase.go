package usecase

import "context"

// IngestUC — операции сессии добавления вещи: от выбора файла до сабмита.
type IngestUC interface {
	OpenSession(ctx context.Context, ownerID string) (*SessionView, error)
	AttachImage(ctx context.Context, req *AttachImageReq) (*SessionView, error)
	ToggleRemoval(ctx context.Context, sessionID string, enabled bool) (*SessionView, error)
	GetSession(ctx context.Context, sessionID string) (*SessionView, error)
	GetPreview(ctx context.Context, sessionID string, handleID string) (*PreviewImage, error)
	Submit(ctx context.Context, req *SubmitItemReq) (*ItemInfo, error)
	CloseSession(ctx context.Context, sessionID string) error
}

// WardrobeUC — операции над гардеробом владельца.
type WardrobeUC interface {
	CreateItem(ctx context.Context, req *CreateItemReq) (*ItemInfo, error)
	GetItems(ctx context.Context, ownerID string) ([]ItemInfo, error)
	UpdateItem(ctx context.Context, req *UpdateItemReq) (*ItemInfo, error)
	DeleteItem(ctx context.Context, ownerID string, itemID string) error
}
