package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// maxFormOverhead — запас на границы multipart и текстовые поля формы.
const maxFormOverhead = 1 << 20

type SessionHandler struct {
	ingestUC usecase.IngestUC
	cfg      *cfg.IngestCfg
	logger   logger.Logger
}

func NewSessionHandler(ingestUC usecase.IngestUC, cfg *cfg.IngestCfg, logger logger.Logger) *SessionHandler {
	return &SessionHandler{ingestUC: ingestUC, cfg: cfg, logger: logger}
}

// toggleRemovalRequest — тело запроса переключателя удаления фона.
type toggleRemovalRequest struct {
	Enabled bool `json:"enabled"`
}

// sessionResponse — снимок сессии, отдаваемый клиенту.
type sessionResponse struct {
	SessionID      string            `json:"session_id"`
	State          string            `json:"state"`
	RemovalEnabled bool              `json:"removal_enabled"`
	Progress       int               `json:"progress"`
	ColorHex       string            `json:"color_hex,omitempty"`
	Notices        []noticeResponse  `json:"notices,omitempty"`
	Previews       map[string]string `json:"previews,omitempty"`
}

// noticeResponse — мягкая ошибка конвейера, показываемая пользователю.
type noticeResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newSessionResponse(view *usecase.SessionView) *sessionResponse {
	notices := make([]noticeResponse, 0, len(view.Notices))
	for _, n := range view.Notices {
		notices = append(notices, noticeResponse{Kind: n.Kind, Message: n.Message})
	}

	previews := make(map[string]string, len(view.Previews))
	for kind, handle := range view.Previews {
		previews[string(kind)] = handle
	}

	return &sessionResponse{
		SessionID:      view.SessionID,
		State:          string(view.State),
		RemovalEnabled: view.RemovalEnabled,
		Progress:       view.Progress,
		ColorHex:       view.ColorHex,
		Notices:        notices,
		Previews:       previews,
	}
}

// openSession
//
//	@Summary		Открытие сессии добавления вещи
//	@Description	Создает сессию конвейера добавления фото вещи в гардероб
//	@Tags			ingest
//	@Produce		json
//	@Param			X-Owner-ID	header		string			true	"Идентификатор владельца гардероба"
//	@Success		201			{object}	sessionResponse	"Созданная сессия"
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/ingest/sessions [post]
func (h *SessionHandler) openSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.ingestUC.OpenSession(r.Context(), ownerID(r))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, newSessionResponse(view))
}

// attachImage
//
//	@Summary		Прикрепление фото вещи
//	@Description	Загружает фото в сессию: валидация, пережатие, выборка цвета. Повторная загрузка заменяет прежний файл
//	@Tags			ingest
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			sessionID	path		string			true	"Идентификатор сессии"
//	@Param			image		formData	file			true	"Фото вещи"
//	@Success		200			{object}	sessionResponse	"Состояние сессии после прикрепления"
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		404			{object}	ErrorResponse	"Сессия не найдена"
//	@Router			/ingest/sessions/{sessionID}/image [post]
func (h *SessionHandler) attachImage(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 32 << 20

	sessionID := chi.URLParam(r, "sessionID")
	maxBytes := h.cfg.MaxUploadBytes + maxFormOverhead

	// Крупные тела отсекаются до чтения; в сообщении — фактический размер.
	if r.ContentLength > maxBytes {
		err := fmt.Errorf(
			"file size %.1f MB exceeds the %d MB limit: %w",
			float64(r.ContentLength)/(1<<20),
			h.cfg.MaxUploadBytes/(1<<20),
			e.ErrFileTooLarge,
		)
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		err := e.Wrap("image form field is empty", e.ErrMissingFields)
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	data, mimeType, err := readFile(files[0], h.cfg.MaxUploadBytes)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	upload := usecase.NewGarmentUpload(data, mimeType, int64(len(data)), files[0].Filename)

	view, err := h.ingestUC.AttachImage(r.Context(), usecase.NewAttachImageReq(sessionID, upload))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newSessionResponse(view))
}

// toggleRemoval
//
//	@Summary		Переключатель удаления фона
//	@Description	Включает или выключает удаление фона. Выключение мгновенно, включение с кэшированным результатом не ходит в сеть
//	@Tags			ingest
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string					true	"Идентификатор сессии"
//	@Param			request		body		toggleRemovalRequest	true	"Новое положение переключателя"
//	@Success		200			{object}	sessionResponse			"Состояние сессии"
//	@Failure		404			{object}	ErrorResponse			"Сессия не найдена"
//	@Failure		409			{object}	ErrorResponse			"Идет сабмит"
//	@Router			/ingest/sessions/{sessionID}/removal [post]
func (h *SessionHandler) toggleRemoval(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req toggleRemovalRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	view, err := h.ingestUC.ToggleRemoval(r.Context(), sessionID, req.Enabled)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newSessionResponse(view))
}

// getSession
//
//	@Summary		Состояние сессии
//	@Description	Возвращает снимок сессии: состояние, прогресс удаления фона, превью, нотисы
//	@Tags			ingest
//	@Produce		json
//	@Param			sessionID	path		string			true	"Идентификатор сессии"
//	@Success		200			{object}	sessionResponse	"Снимок сессии"
//	@Failure		404			{object}	ErrorResponse	"Сессия не найдена"
//	@Router			/ingest/sessions/{sessionID} [get]
func (h *SessionHandler) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.ingestUC.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newSessionResponse(view))
}

// getPreview
//
//	@Summary		Превью изображения сессии
//	@Description	Отдает байты превью по хэндлу из снимка сессии
//	@Tags			ingest
//	@Produce		image/jpeg
//	@Param			sessionID	path	string	true	"Идентификатор сессии"
//	@Param			handleID	path	string	true	"Хэндл превью"
//	@Success		200			{file}	binary	"Байты изображения"
//	@Failure		404			{object}	ErrorResponse	"Превью не найдено"
//	@Router			/ingest/sessions/{sessionID}/preview/{handleID} [get]
func (h *SessionHandler) getPreview(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	handleID := chi.URLParam(r, "handleID")

	img, err := h.ingestUC.GetPreview(r.Context(), sessionID, handleID)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	// Буферы живут не дольше сессии, кэшировать их нельзя.
	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// submitItem
//
//	@Summary		Сабмит сессии
//	@Description	Создает вещь в гардеробе из текущей сессии: дожидается удаления фона, загружает артефакты, пишет запись
//	@Tags			ingest
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string				true	"Идентификатор сессии"
//	@Param			request		body		submitItemRequest	true	"Черновик вещи"
//	@Success		201			{object}	itemResponse		"Созданная вещь"
//	@Failure		400			{object}	ErrorResponse		"Ошибка валидации"
//	@Failure		409			{object}	ErrorResponse		"Сабмит уже идет"
//	@Router			/ingest/sessions/{sessionID}/submit [post]
func (h *SessionHandler) submitItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req submitItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	draft, err := parseDraft(&req)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	item, err := h.ingestUC.Submit(r.Context(), usecase.NewSubmitItemReq(sessionID, draft))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, newItemResponse(item))
}

// closeSession
//
//	@Summary		Закрытие сессии
//	@Description	Закрывает сессию и освобождает все ее буферы
//	@Tags			ingest
//	@Param			sessionID	path	string	true	"Идентификатор сессии"
//	@Success		204			"Сессия закрыта"
//	@Failure		404			{object}	ErrorResponse	"Сессия не найдена"
//	@Router			/ingest/sessions/{sessionID} [delete]
func (h *SessionHandler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.ingestUC.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
