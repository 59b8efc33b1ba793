package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTrackerAdvance тестирует синтетическую кривую: шаг зависит от полосы,
// значение упирается в потолок последней полосы.
func TestTrackerAdvance(t *testing.T) {
	tr := NewTracker([]Band{
		{UpTo: 10, Step: 5},
		{UpTo: 20, Step: 2},
	})

	// Быстрая полоса: по 5 за тик
	assert.Equal(t, 5, tr.Advance())
	assert.Equal(t, 10, tr.Advance())

	// Медленная полоса: по 2 за тик до потолка
	assert.Equal(t, 12, tr.Advance())
	assert.Equal(t, 14, tr.Advance())
	assert.Equal(t, 16, tr.Advance())
	assert.Equal(t, 18, tr.Advance())
	assert.Equal(t, 20, tr.Advance())

	// Потолок держится, пока операция не завершена
	assert.Equal(t, 20, tr.Advance())
	assert.Equal(t, 20, tr.Value())
}

// TestTrackerDefaultBands тестирует кривую по умолчанию: монотонный рост
// и потолок 95 до явного завершения.
func TestTrackerDefaultBands(t *testing.T) {
	tr := NewTracker(DefaultBands)

	prev := 0
	for i := 0; i < 500; i++ {
		v := tr.Advance()
		require.GreaterOrEqual(t, v, prev, "displayed progress must never decrease")
		require.LessOrEqual(t, v, 95)
		prev = v
	}

	assert.Equal(t, 95, tr.Value())
}

// TestTrackerSetReal тестирует вливание реального прогресса движка.
func TestTrackerSetReal(t *testing.T) {
	tr := NewTracker(DefaultBands)

	// Реальный прогресс поднимает значение вперёд синтетики
	assert.Equal(t, 40, tr.SetReal(40))

	// Назад значение не откатывается
	assert.Equal(t, 40, tr.SetReal(15))

	// Синтетический тик продолжает с поднятого уровня
	assert.GreaterOrEqual(t, tr.Advance(), 40)

	// Выше потолка реальный прогресс не поднимает
	assert.Equal(t, 95, tr.SetReal(100))
}

// TestTrackerComplete тестирует фиксацию завершения: значение мгновенно 100
// и больше не меняется.
func TestTrackerComplete(t *testing.T) {
	tr := NewTracker(DefaultBands)

	tr.Advance()
	tr.Complete()

	assert.Equal(t, 100, tr.Value())
	assert.Equal(t, 100, tr.Advance())
	assert.Equal(t, 100, tr.SetReal(10))
}

// TestTrackerEmptyBands тестирует подстановку кривой по умолчанию.
func TestTrackerEmptyBands(t *testing.T) {
	tr := NewTracker(nil)

	assert.Equal(t, 2, tr.Advance())
}
