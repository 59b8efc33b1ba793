package minio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUploadArtifacts тестирует параллельную загрузку артефактов и сборку ключей с URL.
func TestUploadArtifacts(t *testing.T) {
	repo := &fakeImageRepo{}
	infra := newTestInfra(repo, context.Background())

	res, err := infra.UploadArtifacts(context.Background(), usecase.NewUploadArtifactsReq("owner-1", []usecase.ArtifactUpload{
		{Kind: domain.ArtifactOriginal, Data: []byte("orig"), MimeType: "image/jpeg"},
		{Kind: domain.ArtifactProcessed, Data: []byte("cut"), MimeType: "image/png"},
	}))
	require.NoError(t, err)

	require.Len(t, res.Keys, 2)
	assert.True(t, strings.HasPrefix(res.Keys[domain.ArtifactOriginal], "owner-1/original-"))
	assert.True(t, strings.HasSuffix(res.Keys[domain.ArtifactOriginal], ".jpg"))
	assert.True(t, strings.HasPrefix(res.Keys[domain.ArtifactProcessed], "owner-1/processed-"))
	assert.True(t, strings.HasSuffix(res.Keys[domain.ArtifactProcessed], ".png"))

	assert.Equal(t, "http://cdn.local/garments/"+res.Keys[domain.ArtifactOriginal], res.URLs[domain.ArtifactOriginal])
	assert.Len(t, repo.uploadedKeys(), 2)
	assert.Empty(t, repo.deletedKeys())
}

// TestUploadArtifactsCompensation тестирует семантику «все или ничего»:
// при ошибке одной загрузки уже загруженные объекты удаляются.
func TestUploadArtifactsCompensation(t *testing.T) {
	repo := &fakeImageRepo{failSubstr: "processed", failDelay: 20 * time.Millisecond}
	infra := newTestInfra(repo, context.Background())

	_, err := infra.UploadArtifacts(context.Background(), usecase.NewUploadArtifactsReq("owner-1", []usecase.ArtifactUpload{
		{Kind: domain.ArtifactOriginal, Data: []byte("orig"), MimeType: "image/jpeg"},
		{Kind: domain.ArtifactProcessed, Data: []byte("cut"), MimeType: "image/png"},
	}))
	require.Error(t, err)

	require.NoError(t, infra.WaitForCleanup(context.Background()))

	deleted := repo.deletedKeys()
	require.Len(t, deleted, 1)
	assert.Contains(t, deleted[0], "original-")
}

// TestUploadArtifactsUnsupportedMime тестирует отказ по неизвестному MIME-типу.
func TestUploadArtifactsUnsupportedMime(t *testing.T) {
	repo := &fakeImageRepo{}
	infra := newTestInfra(repo, context.Background())

	_, err := infra.UploadArtifacts(context.Background(), usecase.NewUploadArtifactsReq("owner-1", []usecase.ArtifactUpload{
		{Kind: domain.ArtifactOriginal, Data: []byte("doc"), MimeType: "application/pdf"},
	}))
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)
}

// TestCleanupImagesRetry тестирует повтор удаления после временного сбоя.
func TestCleanupImagesRetry(t *testing.T) {
	repo := &fakeImageRepo{deleteFails: 1}
	infra := newTestInfra(repo, context.Background())

	infra.CleanupImages([]string{"owner-1/original-x.jpg"})
	require.NoError(t, infra.WaitForCleanup(context.Background()))

	assert.Equal(t, []string{"owner-1/original-x.jpg"}, repo.deletedKeys())
}

// TestWaitForCleanupTimeout тестирует прерывание ожидания компенсации по таймауту завершения.
func TestWaitForCleanupTimeout(t *testing.T) {
	shutdownCtx, stop := context.WithCancel(context.Background())
	defer stop()

	block := make(chan struct{})
	repo := &fakeImageRepo{blockDelete: block}
	infra := newTestInfra(repo, shutdownCtx)

	infra.CleanupImages([]string{"owner-1/original-x.jpg"})

	waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := infra.WaitForCleanup(waitCtx)
	require.Error(t, err)

	// Снятие блокировки и остановка фоновой горутины
	stop()
	close(block)
	require.NoError(t, infra.WaitForCleanup(context.Background()))
}

// newTestInfra собирает инфраструктуру с фейковым S3-репозиторием.
func newTestInfra(repo usecase.ImageRepository, shutdownCtx context.Context) *MinioInfrastructure {
	return NewMinioInfrastructure(repo, &cfg.MinIOCfg{
		BucketName:        "garments",
		PublicBaseURL:     "http://cdn.local",
		UploadConcurrency: 2,
	}, logger.NopLogger{}, shutdownCtx)
}

// fakeImageRepo имитирует S3-репозиторий с управляемыми сбоями.
type fakeImageRepo struct {
	mu          sync.Mutex
	uploaded    []string
	deleted     []string
	failSubstr  string        // ключи с этой подстрокой не загружаются
	failDelay   time.Duration // пауза перед сбоем, чтобы успела пройти параллельная загрузка
	deleteFails int           // сколько первых Delete завершить ошибкой
	blockDelete chan struct{} // если задан, Delete ждёт закрытия канала или контекста
}

func (f *fakeImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	if f.failSubstr != "" && strings.Contains(image.ObjectKey, f.failSubstr) {
		time.Sleep(f.failDelay)
		return "", errors.New("simulated upload failure")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, image.ObjectKey)

	return image.ObjectKey, nil
}

func (f *fakeImageRepo) Delete(ctx context.Context, key string) error {
	if f.blockDelete != nil {
		select {
		case <-f.blockDelete:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteFails > 0 {
		f.deleteFails--
		return errors.New("simulated delete failure")
	}

	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeImageRepo) uploadedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, len(f.uploaded))
	copy(keys, f.uploaded)

	return keys
}

func (f *fakeImageRepo) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, len(f.deleted))
	copy(keys, f.deleted)

	return keys
}
