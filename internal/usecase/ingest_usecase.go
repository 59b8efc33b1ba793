package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/handles"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/DRSN-tech/wardrobe-backend/pkg/progress"
	"github.com/google/uuid"
)

// janitorInterval — период обхода просроченных сессий.
const janitorInterval = time.Minute

// allowedMimeTypes — форматы, принимаемые на вход конвейера.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/heic": {},
	"image/heif": {},
}

// IngestUseCase реализует конвейер добавления вещи: валидация файла,
// пережатие, выборка цвета, удаление фона и сабмит в гардероб.
// Состояние сессий живёт в памяти процесса.
type IngestUseCase struct {
	processor   ImageProcessor
	removal     RemovalInfra
	imagesInfra ImagesInfra
	wardrobe    WardrobeUC
	handles     *handles.Registry
	logger      logger.Logger
	cfg         *cfg.IngestCfg

	mu       sync.RWMutex
	sessions map[string]*ingestSession

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewIngestUC(
	processor ImageProcessor,
	removal RemovalInfra,
	imagesInfra ImagesInfra,
	wardrobe WardrobeUC,
	logger logger.Logger,
	cfg *cfg.IngestCfg,
) *IngestUseCase {
	return &IngestUseCase{
		processor:   processor,
		removal:     removal,
		imagesInfra: imagesInfra,
		wardrobe:    wardrobe,
		handles:     handles.NewRegistry(),
		logger:      logger,
		cfg:         cfg,
		sessions:    make(map[string]*ingestSession),
		stopCh:      make(chan struct{}),
	}
}

// OpenSession создаёт новую сессию добавления вещи для владельца гардероба.
func (i *IngestUseCase) OpenSession(ctx context.Context, ownerID string) (*SessionView, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, e.ErrOwnerRequired
	}

	s := newIngestSession(uuid.NewString(), ownerID)

	i.mu.Lock()
	i.sessions[s.id] = s
	i.mu.Unlock()

	s.mu.Lock()
	view := s.view()
	s.mu.Unlock()

	return view, nil
}

// AttachImage прикрепляет файл к сессии: валидация, пережатие, выборка цвета.
// Повторное прикрепление поднимает поколение и обесценивает прежние результаты.
func (i *IngestUseCase) AttachImage(ctx context.Context, req *AttachImageReq) (*SessionView, error) {
	const op = "IngestUseCase.AttachImage"

	// Ошибки валидации возвращаются без префикса операции: их текст уходит клиенту.
	if err := i.validateUpload(&req.Upload); err != nil {
		return nil, err
	}

	s, err := i.session(req.SessionID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, e.Wrap(op, e.ErrSessionClosed)
	}
	if s.submitInFlight {
		s.mu.Unlock()
		return nil, e.Wrap(op, e.ErrSubmitInProgress)
	}
	if s.state == domain.StateSubmitted {
		s.mu.Unlock()
		return nil, e.Wrap(op, e.ErrSessionClosed)
	}

	// Новый выбор файла перезапускает конвейер с нуля: результаты
	// прежнего поколения отбрасываются, включая летящее удаление фона.
	s.generation++
	generation := s.generation
	oldHandles := s.dropArtifacts()
	s.colorHex = ""
	s.notices = nil
	s.embedding = nil
	s.modelVersion = ""
	s.tracker = nil
	s.state = domain.StateFileSelected
	s.transition(domain.StateCompressing)
	s.touch()
	s.mu.Unlock()

	i.handles.ReleaseAll(oldHandles)

	// Пережатие крупных файлов; при ошибке конвейер не падает,
	// а продолжает работать с исходным буфером.
	data := req.Upload.Data
	mime := normalizeMime(req.Upload.MimeType)
	compressFailed := false

	res, err := i.processor.Compress(ctx, &CompressReq{Data: data, MimeType: mime})
	if err != nil {
		compressFailed = true
		i.logger.Warnf("Compression failed, using the original buffer. session_id: %s, error: %v", s.id, e.Wrap(op, err))
	} else {
		data = res.Data
		mime = res.MimeType
	}

	// Цвет вещи — центральный пиксель итогового изображения.
	colorHex, err := i.processor.SampleColor(ctx, data)
	if err != nil {
		colorHex = ""
		i.logger.Warnf("Color sampling failed. session_id: %s, error: %v", s.id, e.Wrap(op, err))
	}

	s.mu.Lock()
	if s.closed || s.generation != generation {
		// Пока шла обработка, пользователь выбрал другой файл.
		view := s.view()
		s.mu.Unlock()
		return view, nil
	}

	handle := i.handles.Create(data, mime)
	s.artifacts[domain.ArtifactOriginal] = domain.NewArtifact(domain.ArtifactOriginal, generation, data, mime, handle)
	s.colorHex = colorHex
	if compressFailed {
		s.addNotice("compression_fallback", "image compression failed, the original file is used")
	}
	s.transition(domain.StateReady)
	removalWanted := s.removalEnabled
	s.touch()
	s.mu.Unlock()

	if removalWanted {
		i.beginRemoval(s, generation)
	}

	s.mu.Lock()
	view := s.view()
	s.mu.Unlock()

	return view, nil
}

// ToggleRemoval переключает удаление фона. Включение с кэшированным результатом
// текущего поколения применяется мгновенно; выключение никогда не ждёт.
func (i *IngestUseCase) ToggleRemoval(ctx context.Context, sessionID string, enabled bool) (*SessionView, error) {
	const op = "IngestUseCase.ToggleRemoval"

	s, err := i.session(sessionID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state == domain.StateSubmitted {
		return nil, e.Wrap(op, e.ErrSessionClosed)
	}
	if s.submitInFlight {
		return nil, e.Wrap(op, e.ErrSubmitInProgress)
	}

	s.touch()

	if !enabled {
		s.removalEnabled = false
		// Летящая операция не отменяется: её результат останется в кэше
		// сессии и мгновенно применится при повторном включении.
		if s.state == domain.StateRemovalInProgress || s.state == domain.StateRemovalDone {
			s.transition(domain.StateReady)
		}

		return s.view(), nil
	}

	s.removalEnabled = true

	// Любое редактирование после неудачного сабмита возвращает сессию в Ready.
	if s.state == domain.StateSubmitFailed {
		s.transition(domain.StateReady)
	}

	// Кэшированный результат текущего поколения применяется без сети.
	if art := s.processedFor(s.generation); art != nil {
		s.transition(domain.StateRemovalDone)
		return s.view(), nil
	}

	// Операция уже летит — присоединяемся к ней, второй запуск не нужен.
	if s.removalInFlight {
		s.transition(domain.StateRemovalInProgress)
		return s.view(), nil
	}

	i.beginRemovalLocked(s, s.generation)

	return s.view(), nil
}

// GetSession возвращает снимок состояния сессии.
func (i *IngestUseCase) GetSession(ctx context.Context, sessionID string) (*SessionView, error) {
	const op = "IngestUseCase.GetSession"

	s, err := i.session(sessionID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	s.mu.Lock()
	s.touch()
	view := s.view()
	s.mu.Unlock()

	return view, nil
}

// GetPreview отдаёт байты превью по хэндлу. Хэндл обязан принадлежать сессии.
func (i *IngestUseCase) GetPreview(ctx context.Context, sessionID string, handleID string) (*PreviewImage, error) {
	const op = "IngestUseCase.GetPreview"

	s, err := i.session(sessionID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	s.mu.Lock()
	owned := false
	for _, art := range s.artifacts {
		if art.Handle == handleID {
			owned = true
			break
		}
	}
	s.touch()
	s.mu.Unlock()

	if !owned {
		return nil, e.Wrap(op, e.ErrPreviewNotFound)
	}

	data, mime, ok := i.handles.Get(handleID)
	if !ok {
		return nil, e.Wrap(op, e.ErrPreviewNotFound)
	}

	return &PreviewImage{Data: data, MimeType: mime}, nil
}

// Submit создаёт вещь из текущей сессии: дожидается летящего удаления фона,
// загружает артефакты в S3 и заводит запись в гардеробе. При любой ошибке
// сессия остаётся в SubmitFailed со всеми буферами — можно повторить.
func (i *IngestUseCase) Submit(ctx context.Context, req *SubmitItemReq) (*ItemInfo, error) {
	const op = "IngestUseCase.Submit"

	s, err := i.session(req.SessionID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	draft := req.Draft
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, e.Wrap(op, e.ErrSessionClosed)
	}
	if s.submitInFlight {
		s.mu.Unlock()
		return nil, e.Wrap(op, e.ErrSubmitInProgress)
	}
	if s.state == domain.StateSubmitted {
		s.mu.Unlock()
		return nil, e.Wrap(op, e.ErrSessionClosed)
	}
	if _, ok := s.artifacts[domain.ArtifactOriginal]; !ok {
		s.mu.Unlock()
		return nil, e.Wrap(op, e.ErrNoImageAttached)
	}

	s.submitInFlight = true
	s.touch()
	done := s.removalDone
	inFlight := s.removalInFlight
	s.mu.Unlock()

	// Сабмит во время удаления фона дожидается его исхода: успех даёт
	// обработанный буфер, ошибка — откат к оригиналу.
	if inFlight && done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			s.mu.Lock()
			s.submitInFlight = false
			s.mu.Unlock()
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	s.mu.Lock()
	if !s.transition(domain.StateSubmitting) {
		state := s.state
		s.submitInFlight = false
		s.mu.Unlock()
		return nil, fmt.Errorf("cannot submit from state %q: %w", state, e.ErrStatusBadRequest)
	}

	orig := s.artifacts[domain.ArtifactOriginal]
	artifacts := []ArtifactUpload{{Kind: domain.ArtifactOriginal, Data: orig.Data, MimeType: orig.MimeType}}

	// Processed уходит в хранилище только при включённом переключателе
	// и совпадении поколения с оригиналом.
	withProcessed := false
	if s.removalEnabled {
		if art := s.processedFor(s.generation); art != nil {
			artifacts = append(artifacts, ArtifactUpload{Kind: domain.ArtifactProcessed, Data: art.Data, MimeType: art.MimeType})
			withProcessed = true
		}
	}

	if draft.ColorHex == "" {
		draft.ColorHex = s.colorHex
	}

	ownerID := s.ownerID
	embedding := s.embedding
	modelVersion := s.modelVersion
	s.mu.Unlock()

	// Сохранение артефактов в MinIO: либо все, либо ни одного.
	uploadRes, err := i.imagesInfra.UploadArtifacts(ctx, NewUploadArtifactsReq(ownerID, artifacts))
	if err != nil {
		return nil, i.failSubmit(s, op, err)
	}

	createReq := &CreateItemReq{
		OwnerID:     ownerID,
		Draft:       draft,
		OriginalKey: uploadRes.Keys[domain.ArtifactOriginal],
		OriginalURL: uploadRes.URLs[domain.ArtifactOriginal],
	}
	if withProcessed {
		if key, ok := uploadRes.Keys[domain.ArtifactProcessed]; ok {
			processedKey := key
			processedURL := uploadRes.URLs[domain.ArtifactProcessed]
			createReq.ProcessedKey = &processedKey
			createReq.ProcessedURL = &processedURL
			createReq.Embedding = embedding
			createReq.ModelVersion = modelVersion
		}
	}

	item, err := i.wardrobe.CreateItem(ctx, createReq)
	if err != nil {
		// Запись не создана — загруженные объекты не должны остаться сиротами.
		keys := make([]string, 0, len(uploadRes.Keys))
		for _, key := range uploadRes.Keys {
			keys = append(keys, key)
		}

		i.logger.Warnf(
			"Cleaning up orphaned images after failed item create. session_id: %s, error: %v",
			s.id,
			e.Wrap(op, err),
		)
		i.imagesInfra.CleanupImages(keys)

		return nil, i.failSubmit(s, op, err)
	}

	s.mu.Lock()
	s.submitInFlight = false
	s.transition(domain.StateSubmitted)
	released := s.dropArtifacts()
	s.mu.Unlock()

	i.handles.ReleaseAll(released)

	return item, nil
}

// CloseSession закрывает сессию и освобождает все её буферы.
func (i *IngestUseCase) CloseSession(ctx context.Context, sessionID string) error {
	const op = "IngestUseCase.CloseSession"

	s, err := i.session(sessionID)
	if err != nil {
		return e.Wrap(op, err)
	}

	s.mu.Lock()
	if s.submitInFlight {
		s.mu.Unlock()
		return e.Wrap(op, e.ErrSubmitInProgress)
	}
	s.closed = true
	released := s.dropArtifacts()
	s.mu.Unlock()

	i.handles.ReleaseAll(released)

	i.mu.Lock()
	delete(i.sessions, sessionID)
	i.mu.Unlock()

	return nil
}

// StartJanitor запускает фоновую очистку сессий, просроченных по TTL.
func (i *IngestUseCase) StartJanitor() {
	i.wg.Add(1)

	go func() {
		defer i.wg.Done()

		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-i.stopCh:
				return
			case <-ticker.C:
				i.sweepExpired()
			}
		}
	}()
}

// Stop останавливает джанитор и дожидается фоновых горутин.
func (i *IngestUseCase) Stop() {
	close(i.stopCh)
	i.wg.Wait()
}

// session находит живую сессию по идентификатору.
func (i *IngestUseCase) session(sessionID string) (*ingestSession, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	s, ok := i.sessions[sessionID]
	if !ok {
		return nil, e.ErrSessionNotFound
	}

	return s, nil
}

// failSubmit переводит сессию в SubmitFailed, сохраняя все буферы для повтора.
func (i *IngestUseCase) failSubmit(s *ingestSession, op string, err error) error {
	s.mu.Lock()
	s.submitInFlight = false
	if s.state == domain.StateSubmitting {
		s.transition(domain.StateSubmitFailed)
	}
	s.addNotice("submit_failed", "failed to save the item, please try again")
	s.mu.Unlock()

	return e.Wrap(op, err)
}

// beginRemoval запускает удаление фона, взяв блокировку сессии.
func (i *IngestUseCase) beginRemoval(s *ingestSession, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i.beginRemovalLocked(s, generation)
}

// beginRemovalLocked стартует операцию удаления фона, если в сессии её ещё нет.
// На сессию одновременно летит не больше одной операции. Вызывается под s.mu.
func (i *IngestUseCase) beginRemovalLocked(s *ingestSession, generation uint64) {
	if s.closed || s.removalInFlight || s.generation != generation {
		return
	}

	orig, ok := s.artifacts[domain.ArtifactOriginal]
	if !ok || orig.Generation != generation {
		return
	}

	if !s.transition(domain.StateRemovalInProgress) {
		return
	}

	s.removalInFlight = true
	s.removalDone = make(chan struct{})
	s.tracker = progress.NewTracker(progress.DefaultBands)

	go i.runRemoval(s, generation, orig.Data, orig.MimeType, s.removalDone, s.tracker)
}

// runRemoval выполняет удаление фона с жёстким таймаутом и синтетическим
// прогрессом; настоящий прогресс движка вливается через OnProgress.
func (i *IngestUseCase) runRemoval(
	s *ingestSession,
	generation uint64,
	data []byte,
	mime string,
	done chan struct{},
	tracker *progress.Tracker,
) {
	ctx, cancel := context.WithTimeout(context.Background(), i.cfg.RemovalTimeout)
	defer cancel()

	tickerStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(i.cfg.ProgressTick)
		defer ticker.Stop()

		for {
			select {
			case <-tickerStop:
				return
			case <-ticker.C:
				tracker.Advance()
			}
		}
	}()

	res, err := i.removal.RemoveBackground(ctx, &RemoveBackgroundReq{
		Data:     data,
		MimeType: mime,
		OnProgress: func(real int) {
			tracker.SetReal(real)
		},
	})
	close(tickerStop)

	i.finishRemoval(s, generation, tracker, res, err)
	close(done)
}

// finishRemoval применяет исход удаления фона к сессии. Результат чужого
// поколения отбрасывается; при ошибке сессия мягко откатывается к оригиналу.
func (i *IngestUseCase) finishRemoval(
	s *ingestSession,
	generation uint64,
	tracker *progress.Tracker,
	res *RemoveBackgroundRes,
	err error,
) {
	const op = "IngestUseCase.finishRemoval"

	s.mu.Lock()
	s.removalInFlight = false

	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.generation != generation {
		// Пользователь уже приложил другой файл. Если он ждёт удаление фона
		// для нового поколения, запускаем операцию заново.
		restart := s.removalEnabled && s.state == domain.StateReady
		current := s.generation
		s.mu.Unlock()

		if restart {
			i.beginRemoval(s, current)
		}

		return
	}

	if err != nil {
		kind, message := classifyRemovalError(err)
		s.addNotice(kind, message)
		s.removalEnabled = false
		s.tracker = nil
		if s.state == domain.StateRemovalInProgress {
			s.transition(domain.StateRemovalFailed)
			s.transition(domain.StateReady)
		}
		s.mu.Unlock()

		i.logger.Warnf(
			"Background removal failed, falling back to the original. session_id: %s, error: %v",
			s.id,
			e.Wrap(op, err),
		)

		return
	}

	tracker.Complete()
	handle := i.handles.Create(res.Data, res.MimeType)
	s.artifacts[domain.ArtifactProcessed] = domain.NewArtifact(domain.ArtifactProcessed, generation, res.Data, res.MimeType, handle)
	s.embedding = res.Embedding
	s.modelVersion = res.ModelVersion

	// Если переключатель успели выключить, результат остаётся в кэше сессии
	// и мгновенно применится при повторном включении.
	if s.state == domain.StateRemovalInProgress {
		if s.removalEnabled {
			s.transition(domain.StateRemovalDone)
		} else {
			s.transition(domain.StateReady)
		}
	}
	s.mu.Unlock()
}

// sweepExpired закрывает сессии, неактивные дольше TTL.
func (i *IngestUseCase) sweepExpired() {
	deadline := time.Now().Add(-i.cfg.SessionTTL)

	i.mu.Lock()
	expired := make([]*ingestSession, 0)
	for id, s := range i.sessions {
		s.mu.Lock()
		idle := s.lastTouched.Before(deadline) && !s.submitInFlight
		s.mu.Unlock()

		if idle {
			expired = append(expired, s)
			delete(i.sessions, id)
		}
	}
	i.mu.Unlock()

	for _, s := range expired {
		s.mu.Lock()
		s.closed = true
		released := s.dropArtifacts()
		s.mu.Unlock()

		i.handles.ReleaseAll(released)
		i.logger.Infof("Expired ingest session removed. session_id: %s", s.id)
	}
}

// validateUpload проверяет файл до запуска конвейера: размер и формат.
func (i *IngestUseCase) validateUpload(upload *GarmentUpload) error {
	if upload.Size <= 0 || len(upload.Data) == 0 {
		return e.ErrEmptyFile
	}

	if upload.Size > i.cfg.MaxUploadBytes {
		return fmt.Errorf(
			"file size %.1f MB exceeds the %d MB limit: %w",
			float64(upload.Size)/(1<<20),
			i.cfg.MaxUploadBytes/(1<<20),
			e.ErrFileTooLarge,
		)
	}

	declared := normalizeMime(upload.MimeType)
	if _, ok := allowedMimeTypes[declared]; !ok {
		return fmt.Errorf("%s: %w", declared, e.ErrUnsupportedMediaType)
	}

	// Заявленный тип сверяется с фактическим содержимым. Неизвестные снифферу
	// форматы (HEIC) проходят по заявленному типу.
	sniffed := normalizeMime(http.DetectContentType(upload.Data))
	if sniffed != "application/octet-stream" {
		if _, ok := allowedMimeTypes[sniffed]; !ok {
			return fmt.Errorf("%s: %w", sniffed, e.ErrUnsupportedMediaType)
		}
	}

	return nil
}

// classifyRemovalError превращает ошибку удаления фона в нотис для пользователя.
func classifyRemovalError(err error) (string, string) {
	switch {
	case errors.Is(err, e.ErrRemovalUnsupportedFormat):
		return "removal_unsupported_format", "this image format is not supported by background removal, the original photo is kept"
	case errors.Is(err, e.ErrRemovalResource):
		return "removal_resource", "the image is too heavy for background removal, the original photo is kept"
	case errors.Is(err, e.ErrRemovalNetwork):
		return "removal_network", "background removal service is unreachable, the original photo is kept"
	case errors.Is(err, e.ErrRemovalTimeout):
		return "removal_timeout", "background removal took too long, the original photo is kept"
	default:
		return "removal_unknown", "background removal failed, the original photo is kept"
	}
}

// normalizeMime приводит Content-Type к каноничному виду без параметров.
func normalizeMime(mime string) string {
	mime = strings.TrimSpace(strings.ToLower(mime))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}

	return mime
}
