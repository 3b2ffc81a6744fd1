package purchasing_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
)

func TestSnapshotRestoreContinuesEditing(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(product(1, "P1", 10, "5"), product(2, "P2", 3, "20"))
	deps, _ := newTestDeps(catalog, &fakeSubmitter{})
	s := purchasing.NewSession(deps)
	commitProduct(t, s, 1)
	commitProduct(t, s, 2)
	require.NoError(t, s.EditLine(1))
	require.NoError(t, s.SetDraftQuantity(0))

	raw, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	var snap purchasing.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	restored := purchasing.Restore(snap, deps)

	assert.Equal(t, purchasing.StateReady, restored.State())
	require.NotNil(t, restored.Draft().Quantity)
	assert.Equal(t, 0, *restored.Draft().Quantity)

	require.NoError(t, restored.Commit(ctx))
	lines := restored.Lines()
	require.Len(t, lines, 2)
	assert.True(t, dec("50").Equal(restored.TotalAmount()))
}

func TestRestoreMidResolutionIsUninitialized(t *testing.T) {
	deps, _ := newTestDeps(newFakeCatalog(), &fakeSubmitter{})
	s := purchasing.Restore(purchasing.Snapshot{Mode: purchasing.ModeEdit, State: purchasing.StateResolvingLines}, deps)

	assert.Equal(t, purchasing.StateUninitialized, s.State())
	require.NoError(t, s.InitEditMode(context.Background(), purchasing.PurchaseOrder{ID: 3}))
	assert.Equal(t, purchasing.StateReady, s.State())
}
