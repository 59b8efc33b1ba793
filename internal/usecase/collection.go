package usecase

import (
	"sync"

	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
)

// ownerCollection — локальное представление гардероба одного владельца.
// items упорядочен от новых к старым; writeMu сериализует мутации на время
// удалённого вызова, чтобы snapshot/restore не пересекались.
type ownerCollection struct {
	mu      sync.Mutex
	writeMu sync.Mutex
	items   []domain.WardrobeItem
	primed  bool
}

// CollectionView хранит оптимистичные представления гардеробов в памяти процесса.
type CollectionView struct {
	mu      sync.Mutex
	byOwner map[string]*ownerCollection
}

func NewCollectionView() *CollectionView {
	return &CollectionView{
		byOwner: make(map[string]*ownerCollection),
	}
}

func (v *CollectionView) owner(ownerID string) *ownerCollection {
	v.mu.Lock()
	defer v.mu.Unlock()

	col, ok := v.byOwner[ownerID]
	if !ok {
		col = &ownerCollection{}
		v.byOwner[ownerID] = col
	}

	return col
}

// Lock захватывает писательскую блокировку владельца на время одной мутации.
func (v *CollectionView) Lock(ownerID string) func() {
	col := v.owner(ownerID)
	col.writeMu.Lock()

	return col.writeMu.Unlock
}

// Snapshot возвращает глубокую копию текущего списка для последующего Restore.
func (v *CollectionView) Snapshot(ownerID string) []domain.WardrobeItem {
	col := v.owner(ownerID)
	col.mu.Lock()
	defer col.mu.Unlock()

	snap := make([]domain.WardrobeItem, len(col.items))
	copy(snap, col.items)

	return snap
}

// Restore откатывает список к ранее снятому снимку.
func (v *CollectionView) Restore(ownerID string, snapshot []domain.WardrobeItem) {
	col := v.owner(ownerID)
	col.mu.Lock()
	defer col.mu.Unlock()

	col.items = make([]domain.WardrobeItem, len(snapshot))
	copy(col.items, snapshot)
}

// Insert добавляет запись в начало списка.
func (v *CollectionView) Insert(ownerID string, item domain.WardrobeItem) {
	col := v.owner(ownerID)
	col.mu.Lock()
	defer col.mu.Unlock()

	col.items = append([]domain.WardrobeItem{item}, col.items...)
}

// Replace заменяет запись с указанным id подтверждённой сервером.
func (v *CollectionView) Replace(ownerID string, oldID string, item domain.WardrobeItem) bool {
	col := v.owner(ownerID)
	col.mu.Lock()
	defer col.mu.Unlock()

	for i := range col.items {
		if col.items[i].ID == oldID {
			col.items[i] = item
			return true
		}
	}

	return false
}

// Remove убирает запись из списка.
func (v *CollectionView) Remove(ownerID string, itemID string) bool {
	col := v.owner(ownerID)
	col.mu.Lock()
	defer col.mu.Unlock()

	for i := range col.items {
		if col.items[i].ID == itemID {
			col.items = append(col.items[:i], col.items[i+1:]...)
			return true
		}
	}

	return false
}

// Get возвращает копию записи по id.
func (v *CollectionView) Get(ownerID string, itemID string) (domain.WardrobeItem, bool) {
	col := v.owner(ownerID)
	col.mu.Lock()
	defer col.mu.Unlock()

	for i := range col.items {
		if col.items[i].ID == itemID {
			return col.items[i], true
		}
	}

	return domain.WardrobeItem{}, false
}

// Items возвращает копию списка; второй результат — прогрет ли кэш владельца.
func (v *CollectionView) Items(ownerID string) ([]domain.WardrobeItem, bool) {
	col := v.owner(ownerID)
	col.mu.Lock()
	defer col.mu.Unlock()

	items := make([]domain.WardrobeItem, len(col.items))
	copy(items, col.items)

	return items, col.primed
}

// Prime наполняет представление данными из внешнего источника.
func (v *CollectionView) Prime(ownerID string, items []domain.WardrobeItem) {
	col := v.owner(ownerID)
	col.mu.Lock()
	defer col.mu.Unlock()

	col.items = make([]domain.WardrobeItem, len(items))
	copy(col.items, items)
	col.primed = true
}
