// Package handles реализует реестр временных preview-хэндлов с подсчётом ссылок.
// Хэндл живёт, пока на него есть хотя бы одна ссылка; Release идемпотентен.
package handles

import (
	"sync"

	"github.com/google/uuid"
)

type entry struct {
	data []byte
	mime string
	refs int
}

// Registry — потокобезопасный реестр байтовых буферов, доступных по хэндлу.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Create регистрирует буфер и возвращает новый хэндл с одной ссылкой.
func (r *Registry) Create(data []byte, mime string) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &entry{data: data, mime: mime, refs: 1}

	return id
}

// Retain добавляет ссылку на хэндл. Возвращает false, если хэндл не существует.
func (r *Registry) Retain(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	en, ok := r.entries[id]
	if !ok {
		return false
	}

	en.refs++
	return true
}

// Get возвращает буфер и mime-тип по хэндлу, не изменяя счётчик ссылок.
func (r *Registry) Get(id string) ([]byte, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	en, ok := r.entries[id]
	if !ok {
		return nil, "", false
	}

	return en.data, en.mime, true
}

// Release снимает одну ссылку и освобождает буфер при достижении нуля.
// Повторный Release уже освобождённого или несуществующего хэндла — no-op.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	en, ok := r.entries[id]
	if !ok {
		return
	}

	en.refs--
	if en.refs <= 0 {
		delete(r.entries, id)
	}
}

// ReleaseAll освобождает все перечисленные хэндлы.
func (r *Registry) ReleaseAll(ids []string) {
	for _, id := range ids {
		r.Release(id)
	}
}

// Len возвращает число живых хэндлов.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
