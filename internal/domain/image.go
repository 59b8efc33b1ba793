package domain

// Image — объект для загрузки в S3-хранилище.
type Image struct {
	ID        string // uuid
	Bucket    string
	ObjectKey string
	Bytes     []byte
	// Size равный -1 означает поток неизвестной длины; загрузчик тогда
	// буферизует его целиком, поэтому для артефактов размер всегда задан.
	Size        *int64
	ContentType *string // Example: "image/png"
}

func NewImage(id string, bucket string, objectKey string, data []byte, size *int64, contentType *string) *Image {
	return &Image{
		ID:          id,
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Bytes:       data,
		Size:        size,
		ContentType: contentType,
	}
}
