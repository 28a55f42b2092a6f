// Package store persists the full draft state, one record per draft code,
// overwritten wholesale on every write.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

var ErrNotFound = errors.New("draft not found")

const snapshotSchemaVersion = 1

type Store interface {
	Load(ctx context.Context, code string) (engine.State, error)
	Save(ctx context.Context, code string, s engine.State) error
}

type draftSnapshot struct {
	SchemaVersion int          `json:"schema_version"`
	State         engine.State `json:"state"`
}

func marshalSnapshot(s engine.State) ([]byte, error) {
	data, err := json.Marshal(draftSnapshot{SchemaVersion: snapshotSchemaVersion, State: s})
	if err != nil {
		return nil, fmt.Errorf("marshal draft snapshot: %w", err)
	}
	return data, nil
}

func unmarshalSnapshot(data []byte) (engine.State, error) {
	var snap draftSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return engine.State{}, fmt.Errorf("unmarshal draft snapshot: %w", err)
	}
	if snap.SchemaVersion != snapshotSchemaVersion {
		return engine.State{}, fmt.Errorf("unsupported snapshot schema version %d", snap.SchemaVersion)
	}
	s := snap.State
	if s.Images == nil {
		s.Images = map[string]string{}
	}
	s.Normalize()
	return s, nil
}

// Memory keeps snapshots in process. It stores serialized copies so callers
// can't alias stored state.
type Memory struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{drafts: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, code string) (engine.State, error) {
	m.mu.RLock()
	data, ok := m.drafts[code]
	m.mu.RUnlock()
	if !ok {
		return engine.State{}, ErrNotFound
	}
	return unmarshalSnapshot(data)
}

func (m *Memory) Save(_ context.Context, code string, s engine.State) error {
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.drafts[code] = data
	m.mu.Unlock()
	return nil
}
