package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/parlance/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	t.Helper()
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSnapshot := func(id, state string) *domain.Snapshot {
		return &domain.Snapshot{
			SessionID:    id,
			CurrentState: state,
			Status:       domain.StatusWaitingInput,
			Iteration:    3,
			Transcript: []domain.Turn{
				{Role: domain.RoleUser, Content: "hello"},
				{Role: domain.RoleAssistant, Content: "hi there"},
			},
			SideChannel: []domain.SideChannelEntry{{Content: "result"}},
			UpdatedAt:   time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := newSnapshot(sessionID, "research")
		require.NoError(t, store.Save(ctx, snap), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.CurrentState, loaded.CurrentState)
		assert.Equal(t, snap.Status, loaded.Status)
		assert.Equal(t, snap.Iteration, loaded.Iteration)
		assert.Equal(t, snap.Transcript, loaded.Transcript)
		assert.Equal(t, snap.SideChannel, loaded.SideChannel)
		assert.True(t, snap.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newSnapshot(sessionID, "start")))
		require.NoError(t, store.Save(ctx, newSnapshot(sessionID, "exit")))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "exit", loaded.CurrentState)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newSnapshot(sessionID, "start")))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, newSnapshot(id1, "start")))
		require.NoError(t, store.Save(ctx, newSnapshot(id2, "start")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
