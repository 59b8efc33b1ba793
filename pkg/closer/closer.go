// Package closer собирает функции освобождения ресурсов и закрывает их
// при завершении приложения в порядке, обратном регистрации.
package closer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Func — функция закрытия одного ресурса.
type Func func(ctx context.Context) error

// Closer хранит зарегистрированные функции закрытия. Add можно вызывать из
// разных горутин, Close срабатывает только один раз.
type Closer struct {
	mu            sync.Mutex
	once          sync.Once
	funcs         []Func
	forcedTimeout time.Duration
}

// NewCloser создаёт Closer. forcedTimeout ограничивает принудительную фазу
// закрытия, когда контекст Close истёк раньше штатной.
func NewCloser(forcedTimeout time.Duration) *Closer {
	const defaultForcedTimeout = 2 * time.Second

	if forcedTimeout == 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{forcedTimeout: forcedTimeout}
}

// Add регистрирует функцию закрытия.
func (c *Closer) Add(f Func) {
	c.mu.Lock()
	c.funcs = append(c.funcs, f)
	c.mu.Unlock()
}

// Close закрывает ресурсы в порядке LIFO. Каждая функция получает общий ctx;
// если ctx отменяется до того, как очередная функция вернулась, оставшиеся
// закрываются параллельно с собственным таймаутом forcedTimeout.
func (c *Closer) Close(ctx context.Context) error {
	var closeErr error

	c.once.Do(func() {
		c.mu.Lock()
		funcs := c.funcs
		c.mu.Unlock()

		remaining, errs := c.closeOrdered(ctx, funcs)
		if len(remaining) > 0 {
			errs = append(errs, c.closeForced(remaining)...)
			errs = append(errs, fmt.Errorf("%d of %d close funcs did not finish gracefully", len(remaining), len(funcs)))
		}

		if err := errors.Join(errs...); err != nil {
			closeErr = fmt.Errorf("shutdown: %w", err)
		}
	})

	return closeErr
}

// closeOrdered проходит по функциям с конца списка. Возвращает хвост,
// не успевший закрыться до отмены контекста.
func (c *Closer) closeOrdered(ctx context.Context, funcs []Func) ([]Func, []error) {
	var errs []error

	for i := len(funcs) - 1; i >= 0; i-- {
		done := make(chan error, 1)
		go func(f Func) {
			done <- f(ctx)
		}(funcs[i])

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, err)
			}
		case <-ctx.Done():
			return funcs[:i+1], errs
		}
	}

	return nil, errs
}

// closeForced параллельно закрывает оставшиеся ресурсы с отдельным таймаутом.
func (c *Closer) closeForced(funcs []Func) []error {
	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, f := range funcs {
		wg.Add(1)
		go func(f Func) {
			defer wg.Done()
			if err := f(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("forced: %w", err))
				mu.Unlock()
			}
		}(f)
	}
	wg.Wait()

	return errs
}
