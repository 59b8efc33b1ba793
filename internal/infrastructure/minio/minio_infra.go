package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
	"github.com/DRSN-tech/wardrobe-backend/internal/infrastructure"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/jitter"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"

	"github.com/google/uuid"
)

// MinioInfrastructure управляет загрузкой и очисткой артефактов сессии в MinIO.
type MinioInfrastructure struct {
	minioRepo   usecase.ImageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	uploadLimit int
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		minioRepo:   minioRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		wg:          sync.WaitGroup{},
		uploadLimit: cfg.UploadConcurrency,
	}
}

type uploadedArtifact struct {
	kind domain.ArtifactKind
	key  string
	url  string
}

// UploadArtifacts загружает артефакты сессии в MinIO параллельно с ограничением
// одновременных операций. Семантика «все или ничего»: первая ошибка отменяет
// остальные загрузки и запускает очистку уже загруженных объектов.
func (m *MinioInfrastructure) UploadArtifacts(ctx context.Context, req *usecase.UploadArtifactsReq) (*usecase.UploadArtifactsRes, error) {
	const op = "MinioInfrastructure.UploadArtifacts"
	// Отмена остальных загрузок при первой ошибке
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keyCh := make(chan uploadedArtifact, len(req.Artifacts))
	errCh := make(chan error, len(req.Artifacts))
	sem := make(chan struct{}, m.uploadLimit)

	var uploadWg sync.WaitGroup
	for _, artifact := range req.Artifacts {
		uploadWg.Add(1)
		go func() {
			defer uploadWg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			imageID := uuid.NewString()
			ext, err := infrastructure.GetExtensionFromMIME(artifact.MimeType)
			if err != nil {
				errCh <- fmt.Errorf("invalid mime type %s for %s artifact: %w", artifact.MimeType, artifact.Kind, err)
				return
			}

			size := int64(len(artifact.Data))
			objKey := fmt.Sprintf("%s/%s-%s.%s", req.OwnerID, artifact.Kind, imageID, ext)
			newImage := domain.NewImage(imageID, m.cfg.BucketName, objKey, artifact.Data, &size, &artifact.MimeType)

			key, err := m.minioRepo.Upload(ctx, newImage)
			if err != nil {
				errCh <- fmt.Errorf("upload %s artifact failed: %w", artifact.Kind, err)
				return
			}

			keyCh <- uploadedArtifact{
				kind: artifact.Kind,
				key:  key,
				url:  m.publicURL(key),
			}
		}()
	}

	go func() {
		uploadWg.Wait()
		close(errCh)
		close(keyCh)
	}()

	keys := make(map[domain.ArtifactKind]string, len(req.Artifacts))
	urls := make(map[domain.ArtifactKind]string, len(req.Artifacts))
	ok := false
	defer func() {
		if !ok && len(keys) > 0 {
			uploaded := make([]string, 0, len(keys))
			for _, key := range keys {
				uploaded = append(uploaded, key)
			}

			m.wg.Add(1)
			go m.cleanupUploadedKeys(uploaded)
		}
	}()

	for completed := 0; completed < len(req.Artifacts); {
		select {
		case artifact, open := <-keyCh:
			if open {
				keys[artifact.kind] = artifact.key
				urls[artifact.kind] = artifact.url
				completed++
			}
		case err, open := <-errCh:
			if open {
				cancel()
				return nil, e.Wrap(op, err)
			}
		case <-ctx.Done():
			cancel()
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	ok = true
	return usecase.NewUploadArtifactsRes(keys, urls), nil
}

// CleanupImages запускает фоновую очистку указанных ключей MinIO
func (m *MinioInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет указанные объекты из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done() // сигнализируем завершение компенсации
	const op = "MinioInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: Cleaning up uploaded keys", op)

	// Создаём контекст с таймаутом на основе shutdownCtx
	ctx, cancel := context.WithTimeout(m.shutdownCtx, 30*time.Second)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < 3; attempt++ {
			if err := m.minioRepo.Delete(ctx, key); err == nil {
				break // Успешно удалено
			}

			// Проверяем, не отменён ли контекст
			select {
			case <-ctx.Done():
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			default:
			}

			if attempt < 2 {
				sleepTime := jitter.ExponentialBackoff(time.Second, 8*time.Second, attempt, jitter.DefaultJitter)

				select {
				case <-time.After(sleepTime):
				case <-ctx.Done():
					m.logger.Warnf("cleanup interrupted by shutdown during backoff, key=%v", key)
					return
				}
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

// publicURL собирает канонический URL объекта для клиентов.
func (m *MinioInfrastructure) publicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", m.cfg.PublicBaseURL, m.cfg.BucketName, key)
}
