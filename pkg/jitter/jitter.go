// Package jitter размывает интервалы повторных попыток случайной добавкой,
// чтобы воркеры и фоновые задачи не били по общей зависимости синхронно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter — доля случайной добавки к базовому интервалу (50%).
const DefaultJitter = 0.5

// Duration растягивает d случайной добавкой в диапазоне [d, d*(1+factor)].
func Duration(d time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return d
	}

	return d + time.Duration(rand.Float64()*factor*float64(d))
}

// ExponentialBackoff возвращает интервал ожидания перед попыткой attempt
// (нумерация с нуля): base удваивается на каждую попытку, ограничивается
// ceil и размывается джиттером.
func ExponentialBackoff(base, ceil time.Duration, attempt int, factor float64) time.Duration {
	backoff := base
	for ; attempt > 0 && backoff < ceil; attempt-- {
		backoff *= 2
	}
	if backoff > ceil {
		backoff = ceil
	}

	return Duration(backoff, factor)
}
