package usecase

import (
	"sync"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
	"github.com/DRSN-tech/wardrobe-backend/pkg/progress"
)

// ingestSession — живое состояние одной сессии добавления вещи.
// Все поля защищены mu; долгие операции выполняются вне блокировки
// и сверяют generation при применении результата.
type ingestSession struct {
	mu sync.Mutex

	id      string
	ownerID string
	state   domain.SessionState

	// generation растёт с каждым прикреплением файла; результаты
	// с несовпадающим поколением отбрасываются.
	generation uint64

	artifacts map[domain.ArtifactKind]*domain.Artifact

	removalEnabled  bool
	removalInFlight bool
	removalDone     chan struct{} // закрывается при завершении текущей операции
	tracker         *progress.Tracker

	embedding    []float32
	modelVersion string

	colorHex string
	notices  []Notice

	submitInFlight bool

	createdAt   time.Time
	lastTouched time.Time
	closed      bool
}

func newIngestSession(id string, ownerID string) *ingestSession {
	now := time.Now()

	return &ingestSession{
		id:          id,
		ownerID:     ownerID,
		state:       domain.StateIdle,
		artifacts:   make(map[domain.ArtifactKind]*domain.Artifact),
		createdAt:   now,
		lastTouched: now,
	}
}

// transition переводит автомат в следующее состояние, если переход допустим.
func (s *ingestSession) transition(next domain.SessionState) bool {
	if !s.state.CanTransitionTo(next) {
		return false
	}

	s.state = next
	return true
}

// touch отмечает активность сессии для TTL-джанитора.
func (s *ingestSession) touch() {
	s.lastTouched = time.Now()
}

func (s *ingestSession) addNotice(kind string, message string) {
	s.notices = append(s.notices, Notice{Kind: kind, Message: message})
}

// dropArtifacts очищает кэш артефактов и возвращает их хэндлы для освобождения.
func (s *ingestSession) dropArtifacts() []string {
	handles := make([]string, 0, len(s.artifacts))
	for _, art := range s.artifacts {
		handles = append(handles, art.Handle)
	}
	s.artifacts = make(map[domain.ArtifactKind]*domain.Artifact)

	return handles
}

// dropProcessed убирает processed-артефакт (например, при смене поколения)
// и возвращает его хэндл, либо пустую строку.
func (s *ingestSession) dropProcessed() string {
	art, ok := s.artifacts[domain.ArtifactProcessed]
	if !ok {
		return ""
	}

	delete(s.artifacts, domain.ArtifactProcessed)
	return art.Handle
}

// processedFor возвращает processed-артефакт, если он принадлежит указанному поколению.
func (s *ingestSession) processedFor(generation uint64) *domain.Artifact {
	art, ok := s.artifacts[domain.ArtifactProcessed]
	if !ok || art.Generation != generation {
		return nil
	}

	return art
}

// progressValue собирает отображаемый прогресс. Вызывается под mu.
// Вне активного удаления фона прогресс не показывается.
func (s *ingestSession) progressValue() int {
	switch s.state {
	case domain.StateRemovalInProgress:
		if s.tracker != nil {
			return s.tracker.Value()
		}
		return 0
	case domain.StateRemovalDone:
		return 100
	default:
		return 0
	}
}

// view собирает снимок состояния сессии. Вызывается под mu.
func (s *ingestSession) view() *SessionView {
	previews := make(map[domain.ArtifactKind]string, len(s.artifacts))
	for kind, art := range s.artifacts {
		previews[kind] = art.Handle
	}

	notices := make([]Notice, len(s.notices))
	copy(notices, s.notices)

	return &SessionView{
		SessionID:      s.id,
		OwnerID:        s.ownerID,
		State:          s.state,
		Generation:     s.generation,
		RemovalEnabled: s.removalEnabled,
		Progress:       s.progressValue(),
		ColorHex:       s.colorHex,
		Notices:        notices,
		Previews:       previews,
	}
}
