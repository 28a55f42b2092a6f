// Package history keeps bounded undo and redo stacks of full draft snapshots.
package history

import "github.com/DoyleJ11/team-draft-backend/internal/engine"

// Limit is the number of snapshots each stack keeps before evicting the oldest.
const Limit = 50

type Manager struct {
	undo  []engine.State
	redo  []engine.State
	limit int
}

func NewManager() *Manager {
	return &Manager{limit: Limit}
}

// Save records s as the state to return to on the next undo. Any redo history
// is discarded since a new forward action invalidates it.
func (m *Manager) Save(s engine.State) {
	m.undo = push(m.undo, s.Clone(), m.limit)
	m.redo = nil
}

// Undo returns the previous state and records current for redo. ok is false
// when there is nothing to undo.
func (m *Manager) Undo(current engine.State) (engine.State, bool) {
	if len(m.undo) == 0 {
		return current, false
	}
	m.redo = push(m.redo, current.Clone(), m.limit)
	var prev engine.State
	m.undo, prev = pop(m.undo)
	return restore(prev), true
}

func (m *Manager) Redo(current engine.State) (engine.State, bool) {
	if len(m.redo) == 0 {
		return current, false
	}
	m.undo = push(m.undo, current.Clone(), m.limit)
	var next engine.State
	m.redo, next = pop(m.redo)
	return restore(next), true
}

func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Len reports the sizes of the undo and redo stacks.
func (m *Manager) Len() (undo, redo int) {
	return len(m.undo), len(m.redo)
}

func push(stack []engine.State, s engine.State, limit int) []engine.State {
	stack = append(stack, s)
	if len(stack) > limit {
		// drop the oldest; copy so the backing array doesn't grow forever
		stack = append(stack[:0:0], stack[len(stack)-limit:]...)
	}
	return stack
}

func pop(stack []engine.State) ([]engine.State, engine.State) {
	last := stack[len(stack)-1]
	stack[len(stack)-1] = engine.State{}
	return stack[:len(stack)-1], last
}

// restore rebuilds rosters from the player list so a snapshot can never bring
// back a roster that disagrees with the players' team links.
func restore(s engine.State) engine.State {
	s = s.Clone()
	s.Normalize()
	return s
}
