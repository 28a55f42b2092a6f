package types

import "github.com/DoyleJ11/team-draft-backend/internal/engine"

type ClientMessage struct {
	Type      string `json:"type"`
	PlayerID  string `json:"player_id,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	Index     int    `json:"index,omitempty"`
	Direction int    `json:"direction,omitempty"`
	Snake     bool   `json:"snake,omitempty"`
	Name      string `json:"name,omitempty"`
	Captain   string `json:"captain,omitempty"`
	Color     string `json:"color,omitempty"`
	Image     string `json:"image,omitempty"`
}

type ServerMessage struct {
	Type     string         `json:"type"` // "StateSnapshot" | "Notice" | "Error"
	Version  int            `json:"version,omitempty"`
	State    *engine.State  `json:"state,omitempty"`
	Events   []engine.Event `json:"events,omitempty"`
	Fragment string         `json:"fragment,omitempty"`
	CanUndo  bool           `json:"can_undo"`
	CanRedo  bool           `json:"can_redo"`
	Notice   string         `json:"notice,omitempty"`
	Error    string         `json:"error,omitempty"`
}
