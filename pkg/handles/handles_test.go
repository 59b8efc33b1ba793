package handles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryLifecycle тестирует создание, чтение и освобождение хэндла.
func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()

	id := r.Create([]byte("preview"), "image/jpeg")
	require.NotEmpty(t, id)
	assert.Equal(t, 1, r.Len())

	data, mime, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, []byte("preview"), data)
	assert.Equal(t, "image/jpeg", mime)

	r.Release(id)

	_, _, ok = r.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

// TestRegistryRetain тестирует подсчёт ссылок: буфер живёт до последнего Release.
func TestRegistryRetain(t *testing.T) {
	r := NewRegistry()

	id := r.Create([]byte("shared"), "image/png")
	require.True(t, r.Retain(id))

	r.Release(id)
	_, _, ok := r.Get(id)
	assert.True(t, ok, "buffer must survive while a reference remains")

	r.Release(id)
	_, _, ok = r.Get(id)
	assert.False(t, ok)

	assert.False(t, r.Retain(id), "released handle cannot be retained again")
}

// TestRegistryReleaseIdempotent тестирует, что лишние Release безопасны.
func TestRegistryReleaseIdempotent(t *testing.T) {
	r := NewRegistry()

	id := r.Create([]byte("x"), "image/png")
	r.Release(id)
	r.Release(id)
	r.Release("missing")

	assert.Equal(t, 0, r.Len())
}

// TestRegistryReleaseAll тестирует пакетное освобождение хэндлов.
func TestRegistryReleaseAll(t *testing.T) {
	r := NewRegistry()

	ids := []string{
		r.Create([]byte("a"), "image/png"),
		r.Create([]byte("b"), "image/png"),
		r.Create([]byte("c"), "image/png"),
	}

	r.ReleaseAll(ids[:2])
	assert.Equal(t, 1, r.Len())

	_, _, ok := r.Get(ids[2])
	assert.True(t, ok)
}
