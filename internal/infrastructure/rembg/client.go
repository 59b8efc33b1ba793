// Package rembg реализует клиент сервиса удаления фона: постановка задания,
// поллинг статуса с реальным прогрессом движка и получение результата.
package rembg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
)

// defaultModel — модель сегментации на стороне сервиса.
const defaultModel = "BiRefNet"

const (
	stateQueued  = "queued"
	stateRunning = "running"
	stateDone    = "done"
	stateFailed  = "failed"
)

// Client — низкоуровневый HTTP-клиент сервиса удаления фона.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg *cfg.RembgCfg) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// JobStatus — статус задания на стороне движка.
type JobStatus struct {
	State    string `json:"state"`
	Progress int    `json:"progress"`
	Error    string `json:"error"`
}

// JobResult — результат задания: картинка без фона и вектор вещи.
type JobResult struct {
	ImageB64     string    `json:"image_b64"`
	MimeType     string    `json:"mime_type"`
	Embedding    []float32 `json:"embedding"`
	ModelVersion string    `json:"model_version"`
}

// SubmitJob отправляет изображение на удаление фона и возвращает id задания.
// Ответы 415 и 413/507 сразу превращаются в типизированные ошибки.
func (c *Client) SubmitJob(ctx context.Context, data []byte, mime string, name string) (string, error) {
	const op = "rembg.Client.SubmitJob"

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", name)
	if err != nil {
		return "", e.Wrap(op, err)
	}
	if _, err = part.Write(data); err != nil {
		return "", e.Wrap(op, err)
	}

	_ = writer.WriteField("model", defaultModel)
	_ = writer.WriteField("mime_type", mime)
	if err = writer.Close(); err != nil {
		return "", e.Wrap(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/jobs", body)
	if err != nil {
		return "", e.Wrap(op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", e.Wrap(op, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusOK:
	case http.StatusUnsupportedMediaType:
		return "", e.Wrap(op, e.ErrRemovalUnsupportedFormat)
	case http.StatusRequestEntityTooLarge, http.StatusInsufficientStorage:
		return "", e.Wrap(op, e.ErrRemovalResource)
	default:
		return "", e.Wrap(op, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var out struct {
		JobID string `json:"job_id"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", e.Wrap(op, err)
	}
	if out.JobID == "" {
		return "", e.Wrap(op, fmt.Errorf("empty job id in response"))
	}

	return out.JobID, nil
}

// GetJobStatus возвращает текущий статус задания.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	const op = "rembg.Client.GetJobStatus"

	var status JobStatus
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/jobs/"+jobID, &status); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &status, nil
}

// GetJobResult забирает результат завершённого задания.
func (c *Client) GetJobResult(ctx context.Context, jobID string) (*JobResult, error) {
	const op = "rembg.Client.GetJobResult"

	var result JobResult
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/jobs/"+jobID+"/result", &result); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
