package rembg

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRemoveBackground тестирует полный цикл: постановка задания, поллинг
// статуса с прокидыванием реального прогресса и получение результата.
func TestRemoveBackground(t *testing.T) {
	cutout := []byte("cutout-bytes")
	source := []byte("source-image-bytes")

	var polls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/jobs":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "BiRefNet", r.FormValue("model"))
			assert.Equal(t, "image/jpeg", r.FormValue("mime_type"))

			file, _, err := r.FormFile("image")
			require.NoError(t, err)
			defer file.Close()

			got, err := io.ReadAll(file)
			require.NoError(t, err)
			assert.Equal(t, source, got)

			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{"job_id": "job-42"})
		case "/api/v1/jobs/job-42":
			status := JobStatus{State: stateQueued}
			switch polls.Add(1) {
			case 1:
				// queued без прогресса
			case 2:
				status = JobStatus{State: stateRunning, Progress: 40}
			case 3:
				status = JobStatus{State: stateRunning, Progress: 80}
			default:
				status = JobStatus{State: stateDone, Progress: 100}
			}
			json.NewEncoder(w).Encode(status)
		case "/api/v1/jobs/job-42/result":
			json.NewEncoder(w).Encode(JobResult{
				ImageB64:     base64.StdEncoding.EncodeToString(cutout),
				MimeType:     "image/png",
				Embedding:    []float32{0.25, -0.5},
				ModelVersion: "BiRefNet-2024.1",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	var seen []int
	res, err := newTestInfra(srv).RemoveBackground(context.Background(), &usecase.RemoveBackgroundReq{
		Data:     source,
		MimeType: "image/jpeg",
		OnProgress: func(real int) {
			seen = append(seen, real)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, cutout, res.Data)
	assert.Equal(t, "image/png", res.MimeType)
	assert.Equal(t, []float32{0.25, -0.5}, res.Embedding)
	assert.Equal(t, "BiRefNet-2024.1", res.ModelVersion)

	// Нулевой прогресс из queued не публикуется
	assert.Equal(t, []int{40, 80, 100}, seen)
}

// TestSubmitJobTypedErrors тестирует классификацию HTTP-ответов постановки задания.
func TestSubmitJobTypedErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unsupported media type", status: http.StatusUnsupportedMediaType, want: e.ErrRemovalUnsupportedFormat},
		{name: "payload too large", status: http.StatusRequestEntityTooLarge, want: e.ErrRemovalResource},
		{name: "insufficient storage", status: http.StatusInsufficientStorage, want: e.ErrRemovalResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestInfra(srv).RemoveBackground(context.Background(), &usecase.RemoveBackgroundReq{
				Data:     []byte("img"),
				MimeType: "image/heic",
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestRemoveBackgroundRemoteFailure тестирует перевод ошибок движка в типизированные.
func TestRemoveBackgroundRemoteFailure(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    error
	}{
		{name: "unsupported format", message: "unsupported image format", want: e.ErrRemovalUnsupportedFormat},
		{name: "out of memory", message: "worker ran out of memory", want: e.ErrRemovalResource},
		{name: "unknown failure", message: "inference crashed", want: e.ErrRemovalUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newJobServer(t, JobStatus{State: stateFailed, Error: tt.message})
			defer srv.Close()

			_, err := newTestInfra(srv).RemoveBackground(context.Background(), &usecase.RemoveBackgroundReq{
				Data:     []byte("img"),
				MimeType: "image/png",
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestRemoveBackgroundTimeout тестирует отмену зависшего задания по дедлайну контекста.
func TestRemoveBackgroundTimeout(t *testing.T) {
	srv := newJobServer(t, JobStatus{State: stateRunning, Progress: 10})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	_, err := newTestInfra(srv).RemoveBackground(ctx, &usecase.RemoveBackgroundReq{
		Data:     []byte("img"),
		MimeType: "image/png",
	})
	assert.ErrorIs(t, err, e.ErrRemovalTimeout)
}

// TestRemoveBackgroundServiceDown тестирует недоступность сервиса удаления фона.
func TestRemoveBackgroundServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestInfra(srv).RemoveBackground(context.Background(), &usecase.RemoveBackgroundReq{
		Data:     []byte("img"),
		MimeType: "image/png",
	})
	assert.ErrorIs(t, err, e.ErrRemovalNetwork)
}

// TestRemoveBackgroundEmptyResult тестирует, что пустая картинка в результате — ошибка.
func TestRemoveBackgroundEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/jobs":
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{"job_id": "job-7"})
		case "/api/v1/jobs/job-7":
			json.NewEncoder(w).Encode(JobStatus{State: stateDone, Progress: 100})
		case "/api/v1/jobs/job-7/result":
			json.NewEncoder(w).Encode(JobResult{ImageB64: ""})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	_, err := newTestInfra(srv).RemoveBackground(context.Background(), &usecase.RemoveBackgroundReq{
		Data:     []byte("img"),
		MimeType: "image/png",
	})
	assert.ErrorIs(t, err, e.ErrRemovalUnknown)
}

// newTestInfra собирает инфраструктуру удаления фона поверх тестового сервера.
func newTestInfra(srv *httptest.Server) *RemovalInfrastructure {
	c := &cfg.RembgCfg{
		BaseURL:      srv.URL,
		PollInterval: 5 * time.Millisecond,
		HTTPTimeout:  2 * time.Second,
	}

	return NewRemovalInfrastructure(NewClient(c), c, logger.NopLogger{})
}

// newJobServer поднимает сервер, который принимает задание и на каждый поллинг
// отвечает одним и тем же статусом.
func newJobServer(t *testing.T, status JobStatus) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/jobs":
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{"job_id": "job-1"})
		case "/api/v1/jobs/job-1":
			json.NewEncoder(w).Encode(status)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}
