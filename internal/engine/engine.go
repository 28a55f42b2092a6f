package engine

import (
	"errors"
)

var ErrNoChange = errors.New("no change")
var ErrUnknownTeam = errors.New("unknown team")
var ErrNothingToDraft = errors.New("add teams and players before starting the draft")
var ErrUnsupportedCommand = errors.New("unsupported command")

// Player is a member of the draft pool. TeamID is empty while undrafted.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TeamID string `json:"team_id,omitempty"`
}

// Team owns an ordered roster. Captain is a name only and never appears in Players.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Captain string   `json:"captain"`
	Players []Player `json:"players"`
}

type State struct {
	Teams       []Team   `json:"teams"`
	Players     []Player `json:"players"`
	SnakeDraft  bool     `json:"snake_draft"`
	CurrentTurn int      `json:"current_turn"`
	DraftOrder  []string `json:"draft_order"` // team ids, one per turn

	// Images and the UI fields are persisted with the draft but never shared.
	Images         map[string]string `json:"images,omitempty"`
	EditingTeam    string            `json:"editing_team,omitempty"`
	IsSettingOrder bool              `json:"is_setting_order,omitempty"`
}

type CommandType string

const (
	CmdPickPlayer     CommandType = "PickPlayer"
	CmdStartDraft     CommandType = "StartDraft"
	CmdMoveTeam       CommandType = "MoveTeam"
	CmdSetSnakeDraft  CommandType = "SetSnakeDraft"
	CmdUpdateTeam     CommandType = "UpdateTeam"
	CmdReturnPlayer   CommandType = "ReturnPlayer"
	CmdSetPlayerImage CommandType = "SetPlayerImage"
)

/*
	CmdPickPlayer     -> EvtPlayerPicked -> EvtTurnAdvanced (-> EvtDraftCompleted)
	CmdStartDraft     -> EvtDraftStarted
	CmdMoveTeam       -> EvtTeamMoved
	CmdSetSnakeDraft  -> EvtSnakeDraftChanged
	CmdUpdateTeam     -> EvtTeamUpdated
	CmdReturnPlayer   -> EvtPlayerReturned
	CmdSetPlayerImage -> EvtImageChanged
*/

type Command struct {
	Type      CommandType
	PlayerID  string
	TeamID    string
	Index     int
	Direction int
	Snake     bool
	Name      string
	Captain   string
	Color     string
	Image     string
}

type EventType string

const (
	EvtPlayerPicked      EventType = "PlayerPicked"
	EvtTurnAdvanced      EventType = "TurnAdvanced"
	EvtDraftCompleted    EventType = "DraftCompleted"
	EvtDraftStarted      EventType = "DraftStarted"
	EvtTeamMoved         EventType = "TeamMoved"
	EvtSnakeDraftChanged EventType = "SnakeDraftChanged"
	EvtTeamUpdated       EventType = "TeamUpdated"
	EvtPlayerReturned    EventType = "PlayerReturned"
	EvtImageChanged      EventType = "ImageChanged"
)

type Event struct {
	Type     EventType `json:"type"`
	PlayerID string    `json:"player_id,omitempty"`
	TeamID   string    `json:"team_id,omitempty"`
	Turn     int       `json:"turn,omitempty"`
}

// Apply runs cmd against a copy of s. The input state is never modified, and on
// error the returned state is s itself.
func Apply(s State, cmd Command) ([]Event, State, error) {
	newState := s.Clone()

	switch cmd.Type {
	case CmdPickPlayer:
		events, err := pickPlayer(&newState, cmd.PlayerID)
		if err != nil {
			return nil, s, err
		}
		return events, newState, nil

	case CmdStartDraft:
		if len(newState.Teams) == 0 || len(newState.Players) == 0 {
			return nil, s, ErrNothingToDraft
		}
		newState.DraftOrder = GenerateOrder(newState.Teams, newState.SnakeDraft, len(newState.Players))
		newState.CurrentTurn = 0
		newState.IsSettingOrder = false
		return []Event{{Type: EvtDraftStarted}}, newState, nil

	case CmdMoveTeam:
		target := cmd.Index + cmd.Direction
		if cmd.Direction == 0 || cmd.Index < 0 || cmd.Index >= len(newState.Teams) ||
			target < 0 || target >= len(newState.Teams) {
			return nil, s, ErrNoChange
		}
		newState.Teams[cmd.Index], newState.Teams[target] = newState.Teams[target], newState.Teams[cmd.Index]
		newState.regenerateOrder()
		return []Event{{Type: EvtTeamMoved, TeamID: newState.Teams[target].ID}}, newState, nil

	case CmdSetSnakeDraft:
		if newState.SnakeDraft == cmd.Snake {
			return nil, s, ErrNoChange
		}
		newState.SnakeDraft = cmd.Snake
		newState.regenerateOrder()
		return []Event{{Type: EvtSnakeDraftChanged}}, newState, nil

	case CmdUpdateTeam:
		idx := newState.teamIndex(cmd.TeamID)
		if idx < 0 {
			return nil, s, ErrUnknownTeam
		}
		team := &newState.Teams[idx]
		before := *team
		if cmd.Name != "" {
			team.Name = cmd.Name
		}
		if cmd.Captain != "" {
			team.Captain = cmd.Captain
		}
		if cmd.Color != "" {
			team.Color = cmd.Color
		}
		if team.Name == before.Name && team.Captain == before.Captain && team.Color == before.Color {
			return nil, s, ErrNoChange
		}
		return []Event{{Type: EvtTeamUpdated, TeamID: team.ID}}, newState, nil

	case CmdReturnPlayer:
		p := newState.playerIndex(cmd.PlayerID)
		if p < 0 || newState.Players[p].TeamID == "" {
			return nil, s, ErrNoChange
		}
		teamID := newState.Players[p].TeamID
		newState.Players[p].TeamID = ""
		newState.Normalize()
		return []Event{{Type: EvtPlayerReturned, PlayerID: cmd.PlayerID, TeamID: teamID}}, newState, nil

	case CmdSetPlayerImage:
		if newState.playerIndex(cmd.PlayerID) < 0 {
			return nil, s, ErrNoChange
		}
		if cmd.Image == "" {
			if _, ok := newState.Images[cmd.PlayerID]; !ok {
				return nil, s, ErrNoChange
			}
			delete(newState.Images, cmd.PlayerID)
		} else {
			if newState.Images == nil {
				newState.Images = map[string]string{}
			}
			newState.Images[cmd.PlayerID] = cmd.Image
		}
		return []Event{{Type: EvtImageChanged, PlayerID: cmd.PlayerID}}, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// regenerateOrder rebuilds the order of an active draft after the team list or
// snake flag changed. The turn counter is left alone.
func (s *State) regenerateOrder() {
	if !s.DraftActive() {
		return
	}
	s.DraftOrder = GenerateOrder(s.Teams, s.SnakeDraft, len(s.Players))
}
