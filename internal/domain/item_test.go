package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWardrobeItemIsTemporary тестирует распознавание оптимистичных записей по префиксу id.
func TestWardrobeItemIsTemporary(t *testing.T) {
	temp := NewWardrobeItem(TempIDPrefix+"6f1c", "owner-1", "jacket")
	assert.True(t, temp.IsTemporary())

	confirmed := NewWardrobeItem("8a9e4b12-1111-2222-3333-444455556666", "owner-1", "jacket")
	assert.False(t, confirmed.IsTemporary())
}
