package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

func stateAtTurn(turn int) engine.State {
	s := engine.NewEmptyState()
	s.CurrentTurn = turn
	return s
}

func TestManager_UndoRedo(t *testing.T) {
	m := NewManager()
	m.Save(stateAtTurn(0))
	m.Save(stateAtTurn(1))

	got, ok := m.Undo(stateAtTurn(2))
	require.True(t, ok)
	assert.Equal(t, 1, got.CurrentTurn)

	got, ok = m.Undo(got)
	require.True(t, ok)
	assert.Equal(t, 0, got.CurrentTurn)

	_, ok = m.Undo(got)
	assert.False(t, ok, "undo past the oldest snapshot should be a no-op")

	got, ok = m.Redo(got)
	require.True(t, ok)
	assert.Equal(t, 1, got.CurrentTurn)

	got, ok = m.Redo(got)
	require.True(t, ok)
	assert.Equal(t, 2, got.CurrentTurn)

	_, ok = m.Redo(got)
	assert.False(t, ok)
}

func TestManager_EmptyStacksAreNoOps(t *testing.T) {
	m := NewManager()
	current := stateAtTurn(3)

	got, ok := m.Undo(current)
	assert.False(t, ok)
	assert.Equal(t, current, got)

	got, ok = m.Redo(current)
	assert.False(t, ok)
	assert.Equal(t, current, got)
}

func TestManager_SaveClearsRedo(t *testing.T) {
	m := NewManager()
	m.Save(stateAtTurn(0))
	_, ok := m.Undo(stateAtTurn(1))
	require.True(t, ok)
	require.True(t, m.CanRedo())

	m.Save(stateAtTurn(0))
	assert.False(t, m.CanRedo(), "a new action must invalidate redo history")
}

func TestManager_EvictsOldest(t *testing.T) {
	m := NewManager()
	for i := 0; i < Limit+10; i++ {
		m.Save(stateAtTurn(i))
	}

	undo, redo := m.Len()
	assert.Equal(t, Limit, undo)
	assert.Equal(t, 0, redo)

	current := stateAtTurn(Limit + 10)
	for i := 0; i < Limit; i++ {
		var ok bool
		current, ok = m.Undo(current)
		require.True(t, ok)
	}
	assert.Equal(t, 10, current.CurrentTurn, "oldest surviving snapshot should be turn 10")
	assert.False(t, m.CanUndo())

	_, redo = m.Len()
	assert.Equal(t, Limit, redo, "redo stack is bounded too")
}

func TestManager_SnapshotsAreCopies(t *testing.T) {
	m := NewManager()
	s := engine.NewEmptyState()
	s.Teams = []engine.Team{{ID: "t0", Name: "Team 0"}}
	s.Players = []engine.Player{{ID: "p0", Name: "Ann"}}
	m.Save(s)

	s.Players[0].TeamID = "t0"
	s.Teams[0].Players = append(s.Teams[0].Players, s.Players[0])

	got, ok := m.Undo(s)
	require.True(t, ok)
	assert.Empty(t, got.Players[0].TeamID)
	assert.Empty(t, got.Teams[0].Players)
}

func TestManager_RestoreRebuildsRosters(t *testing.T) {
	m := NewManager()
	stale := engine.NewEmptyState()
	stale.Teams = []engine.Team{{ID: "t0", Players: []engine.Player{{ID: "p1"}}}}
	stale.Players = []engine.Player{
		{ID: "p0", Name: "Ann", TeamID: "t0"},
		{ID: "p1", Name: "Bo"},
	}
	m.Save(stale)

	got, ok := m.Undo(engine.NewEmptyState())
	require.True(t, ok)
	require.Len(t, got.Teams[0].Players, 1)
	assert.Equal(t, "p0", got.Teams[0].Players[0].ID)
}

func TestManager_Clear(t *testing.T) {
	m := NewManager()
	for i := 0; i < 3; i++ {
		m.Save(stateAtTurn(i))
	}
	_, _ = m.Undo(stateAtTurn(3))
	m.Clear()

	undo, redo := m.Len()
	assert.Zero(t, undo)
	assert.Zero(t, redo)
}
