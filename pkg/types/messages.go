package types

// Client -> Server (websocket, /ws?code=XXXXXX)
// PickPlayer:    player_id: string
// ReturnPlayer:  player_id: string
// Undo / Redo / ClearHistory: {}
// StartDraft:    {}
// MoveTeam:      index: number, direction: -1 | 1
// SetSnakeDraft: snake: boolean
// UpdateTeam:    team_id: string, name?: string, captain?: string, color?: string
// SetPlayerImage: player_id: string, image?: string // empty image clears it

// Server -> Client
// StateSnapshot:
//   version: number
//   state: { teams, players, snake_draft, current_turn, draft_order, images }
//   events: [{ type, player_id, team_id, turn }] // DraftCompleted marks the last pick
//   fragment: string // share link fragment, refreshed after a quiet period
//   can_undo / can_redo: boolean
//
// Notice:  notice: string // an operation was rejected; state unchanged
// Error:   error: string  // the message itself could not be understood
//
// Share link fragment: URL-safe base64 (no padding) of the optionally
// DEFLATE-compressed JSON encoding of SharedState.
