package usecase

import "context"

// ImageProcessor — кодек изображений: пережатие и выборка цвета.
type ImageProcessor interface {
	Compress(ctx context.Context, req *CompressReq) (*CompressRes, error)
	SampleColor(ctx context.Context, data []byte) (string, error)
}

// RemovalInfra — клиент сервиса удаления фона.
type RemovalInfra interface {
	RemoveBackground(ctx context.Context, req *RemoveBackgroundReq) (*RemoveBackgroundRes, error)
}

type ImagesInfra interface {
	UploadArtifacts(ctx context.Context, req *UploadArtifactsReq) (*UploadArtifactsRes, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
