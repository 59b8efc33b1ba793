package domain

// SessionState описывает состояние сессии добавления вещи
type SessionState string

const (
	StateIdle              SessionState = "idle"
	StateFileSelected      SessionState = "file_selected"
	StateCompressing       SessionState = "compressing"
	StateReady             SessionState = "ready"
	StateRemovalInProgress SessionState = "removal_in_progress"
	StateRemovalDone       SessionState = "removal_done"
	StateRemovalFailed     SessionState = "removal_failed"
	StateSubmitting        SessionState = "submitting"
	StateSubmitted         SessionState = "submitted"
	StateSubmitFailed      SessionState = "submit_failed"
)

// validTransitions задаёт допустимые переходы конечного автомата сессии.
// Submitted терминально; SubmitFailed и RemovalFailed возвращаются в Ready.
var validTransitions = map[SessionState][]SessionState{
	StateIdle:              {StateFileSelected},
	StateFileSelected:      {StateCompressing},
	StateCompressing:       {StateReady, StateFileSelected},
	StateReady:             {StateFileSelected, StateRemovalInProgress, StateRemovalDone, StateSubmitting},
	StateRemovalInProgress: {StateFileSelected, StateReady, StateRemovalDone, StateRemovalFailed, StateSubmitting},
	StateRemovalDone:       {StateFileSelected, StateReady, StateSubmitting},
	StateRemovalFailed:     {StateReady},
	StateSubmitting:        {StateSubmitted, StateSubmitFailed},
	StateSubmitFailed:      {StateFileSelected, StateSubmitting, StateReady},
	StateSubmitted:         {},
}

// CanTransitionTo проверяет допустимость перехода в следующее состояние.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// IsTerminal сообщает, что из состояния нет допустимых переходов.
func (s SessionState) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}
