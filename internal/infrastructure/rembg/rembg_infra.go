package rembg

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
)

// RemovalInfrastructure выполняет удаление фона через внешний сервис.
// Повторных попыток нет: любая ошибка мягко откатывает сессию к оригиналу,
// решение о новом запуске принимает пользователь.
type RemovalInfrastructure struct {
	client *Client
	cfg    *cfg.RembgCfg
	logger logger.Logger
}

func NewRemovalInfrastructure(client *Client, cfg *cfg.RembgCfg, logger logger.Logger) *RemovalInfrastructure {
	return &RemovalInfrastructure{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// RemoveBackground ставит задание, поллит статус до завершения и забирает
// результат. Реальный прогресс движка публикуется через req.OnProgress.
func (r *RemovalInfrastructure) RemoveBackground(ctx context.Context, req *usecase.RemoveBackgroundReq) (*usecase.RemoveBackgroundRes, error) {
	const op = "RemovalInfrastructure.RemoveBackground"

	jobID, err := r.client.SubmitJob(ctx, req.Data, req.MimeType, "garment")
	if err != nil {
		return nil, e.Wrap(op, classifyTransport(err))
	}

	r.logger.Debugf("Background removal job submitted. job_id: %s", jobID)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, e.Wrap(op, classifyTransport(ctx.Err()))
		case <-ticker.C:
		}

		status, err := r.client.GetJobStatus(ctx, jobID)
		if err != nil {
			return nil, e.Wrap(op, classifyTransport(err))
		}

		if req.OnProgress != nil && status.Progress > 0 {
			req.OnProgress(status.Progress)
		}

		switch status.State {
		case stateQueued, stateRunning:
			continue
		case stateDone:
			return r.fetchResult(ctx, op, jobID)
		case stateFailed:
			return nil, e.Wrap(op, classifyRemote(status.Error))
		default:
			return nil, e.Wrap(op, fmt.Errorf("unknown job state %q: %w", status.State, e.ErrRemovalUnknown))
		}
	}
}

func (r *RemovalInfrastructure) fetchResult(ctx context.Context, op string, jobID string) (*usecase.RemoveBackgroundRes, error) {
	result, err := r.client.GetJobResult(ctx, jobID)
	if err != nil {
		return nil, e.Wrap(op, classifyTransport(err))
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageB64)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%v: %w", err, e.ErrRemovalUnknown))
	}
	if len(data) == 0 {
		return nil, e.Wrap(op, fmt.Errorf("empty result image: %w", e.ErrRemovalUnknown))
	}

	mime := result.MimeType
	if mime == "" {
		mime = "image/png"
	}

	return usecase.NewRemoveBackgroundRes(data, mime, result.Embedding, result.ModelVersion), nil
}

// classifyTransport переводит транспортные ошибки в типизированные.
// Уже типизированные ошибки проходят без изменений.
func classifyTransport(err error) error {
	switch {
	case errors.Is(err, e.ErrRemovalUnsupportedFormat),
		errors.Is(err, e.ErrRemovalResource),
		errors.Is(err, e.ErrRemovalTimeout),
		errors.Is(err, e.ErrRemovalUnknown):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%v: %w", err, e.ErrRemovalTimeout)
	case errors.Is(err, context.Canceled):
		return err
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return fmt.Errorf("%v: %w", err, e.ErrRemovalTimeout)
		}
		return fmt.Errorf("%v: %w", err, e.ErrRemovalNetwork)
	}

	return fmt.Errorf("%v: %w", err, e.ErrRemovalUnknown)
}

// classifyRemote переводит текст ошибки движка в типизированную ошибку.
func classifyRemote(message string) error {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "unsupported"), strings.Contains(lower, "format"):
		return fmt.Errorf("%s: %w", message, e.ErrRemovalUnsupportedFormat)
	case strings.Contains(lower, "memory"), strings.Contains(lower, "too large"), strings.Contains(lower, "resource"):
		return fmt.Errorf("%s: %w", message, e.ErrRemovalResource)
	default:
		return fmt.Errorf("%s: %w", message, e.ErrRemovalUnknown)
	}
}
