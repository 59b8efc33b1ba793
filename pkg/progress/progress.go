// Package progress собирает реальный и синтетический прогресс долгой операции
// в одно монотонно неубывающее значение для отображения.
package progress

import "sync"

// Band описывает диапазон синтетической кривой: до какого значения и с каким шагом за тик.
type Band struct {
	UpTo float64
	Step float64
}

// DefaultBands — кривая «быстро, затем всё медленнее»: резвый старт до 20,
// умеренный ход до 60, замедление до 85 и вялое доползание к потолку 95.
// Конкретные цифры подобраны на глаз, важна форма кривой.
var DefaultBands = []Band{
	{UpTo: 20, Step: 2.5},
	{UpTo: 60, Step: 1.2},
	{UpTo: 85, Step: 0.5},
	{UpTo: 95, Step: 0.15},
}

// Tracker хранит отображаемое значение прогресса одной операции в [0, 100].
// Значение не убывает: синтетический тик и реальный прогресс только поднимают его,
// потолок 95 держится до Complete, после которого значение — ровно 100.
type Tracker struct {
	mu        sync.Mutex
	bands     []Band
	displayed float64
	completed bool
}

func NewTracker(bands []Band) *Tracker {
	if len(bands) == 0 {
		bands = DefaultBands
	}

	return &Tracker{bands: bands}
}

// Advance выполняет один синтетический тик и возвращает отображаемое значение.
func (t *Tracker) Advance() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.completed {
		return 100
	}

	ceil := t.bands[len(t.bands)-1].UpTo
	for _, band := range t.bands {
		if t.displayed < band.UpTo {
			t.displayed += band.Step
			break
		}
	}
	if t.displayed > ceil {
		t.displayed = ceil
	}

	return int(t.displayed)
}

// SetReal поднимает отображаемое значение до реального прогресса движка.
// Реальный прогресс никогда не откатывает значение назад.
func (t *Tracker) SetReal(real int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.completed {
		return 100
	}

	ceil := t.bands[len(t.bands)-1].UpTo
	r := float64(real)
	if r > ceil {
		r = ceil
	}
	if r > t.displayed {
		t.displayed = r
	}

	return int(t.displayed)
}

// Complete фиксирует завершение операции: значение мгновенно становится 100.
func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.completed = true
	t.displayed = 100
}

// Value возвращает текущее отображаемое значение.
func (t *Tracker) Value() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return int(t.displayed)
}
