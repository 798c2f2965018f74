package adapter

import (
	"testing"

	"appointment-scanner/internal/features/availability/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemorySnapshotStore verifies the empty state and replacement.
func TestMemorySnapshotStore(t *testing.T) {
	store := NewMemorySnapshotStore()

	_, ok := store.Latest()
	assert.False(t, ok)

	first := domain.NewAggregatedResult()
	store.Put(first)

	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Same(t, first, latest)

	second := domain.NewAggregatedResult()
	store.Put(second)

	latest, ok = store.Latest()
	require.True(t, ok)
	assert.Same(t, second, latest)
}
