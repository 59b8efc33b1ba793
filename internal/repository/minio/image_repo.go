package minio

import (
	"bytes"
	"context"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// Ключи объектов содержат uuid и никогда не перезаписываются, поэтому
// клиентам можно кэшировать картинки бессрочно.
const artifactCacheControl = "public, max-age=31536000, immutable"

// ImageRepo хранит артефакты вещей в MinIO.
type ImageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewImageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ImageRepo {
	return &ImageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает изображение и возвращает ключ объекта.
func (i *ImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	info, err := i.mc.PutObject(ctx, i.cfg.BucketName, image.ObjectKey, bytes.NewReader(image.Bytes), *image.Size,
		minio.PutObjectOptions{
			ContentType:  *image.ContentType,
			CacheControl: artifactCacheControl,
		})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Delete удаляет объект по ключу.
func (i *ImageRepo) Delete(ctx context.Context, key string) error {
	if err := i.mc.RemoveObject(ctx, i.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
