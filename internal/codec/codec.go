// Package codec packs the shareable part of a draft into a URL-safe string and
// back. Failures never panic out of the package; callers get an error and fall
// back to whatever state they had.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/roster"
	"github.com/DoyleJ11/team-draft-backend/pkg/types"
)

var ErrEncode = errors.New("encode share state")
var ErrDecode = errors.New("decode share state")

var errTooLarge = errors.New("payload too large")

type Codec struct {
	comp Compressor
}

// New returns a codec using comp, or no compression when comp is nil.
func New(comp Compressor) *Codec {
	if comp == nil {
		comp = Identity{}
	}
	return &Codec{comp: comp}
}

func (c *Codec) Encode(s engine.State) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("%w: %v", ErrEncode, r)
		}
	}()

	payload, err := json.Marshal(toShared(s))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	packed, err := c.comp.Compress(payload)
	if err != nil {
		return "", fmt.Errorf("%w: compress: %v", ErrEncode, err)
	}
	return base64.RawURLEncoding.EncodeToString(packed), nil
}

// Decode accepts a fragment with or without its leading '#'. Links produced
// without compression still decode when the codec has a compressor.
func (c *Codec) Decode(encoded string) (s engine.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = engine.State{}, fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()

	raw, err := fromURLSafe(encoded)
	if err != nil {
		return engine.State{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var shared *types.SharedState
	if inflated, derr := c.comp.Decompress(raw); derr == nil {
		shared, err = parseShared(inflated)
	}
	if shared == nil {
		shared, err = parseShared(raw)
	}
	if shared == nil {
		return engine.State{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return fromShared(*shared), nil
}

func fromURLSafe(encoded string) ([]byte, error) {
	encoded = strings.TrimPrefix(strings.TrimSpace(encoded), "#")
	if encoded == "" {
		return nil, errors.New("empty payload")
	}
	std := strings.NewReplacer("-", "+", "_", "/").Replace(encoded)
	if pad := len(std) % 4; pad != 0 {
		std += strings.Repeat("=", 4-pad)
	}
	return base64.StdEncoding.DecodeString(std)
}

func parseShared(data []byte) (*types.SharedState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if _, ok := fields["teams"]; !ok {
		return nil, errors.New("missing teams")
	}
	if _, ok := fields["players"]; !ok {
		return nil, errors.New("missing players")
	}

	var shared types.SharedState
	if err := json.Unmarshal(data, &shared); err != nil {
		return nil, err
	}
	return &shared, nil
}

func toShared(s engine.State) types.SharedState {
	out := types.SharedState{
		Teams:       make([]types.SharedTeam, 0, len(s.Teams)),
		Players:     make([]types.SharedPlayer, 0, len(s.Players)),
		SnakeDraft:  s.SnakeDraft,
		CurrentTurn: s.CurrentTurn,
		DraftOrder:  append([]string{}, s.DraftOrder...),
	}
	for _, team := range s.Teams {
		st := types.SharedTeam{
			ID:      team.ID,
			Name:    team.Name,
			Color:   team.Color,
			Captain: team.Captain,
			Players: make([]types.SharedMember, 0, len(team.Players)),
		}
		for _, p := range team.Players {
			st.Players = append(st.Players, types.SharedMember{ID: p.ID, Name: p.Name})
		}
		out.Teams = append(out.Teams, st)
	}
	for _, p := range s.Players {
		sp := types.SharedPlayer{ID: p.ID, Name: p.Name}
		if p.TeamID != "" {
			teamID := p.TeamID
			sp.TeamID = &teamID
		}
		out.Players = append(out.Players, sp)
	}
	return out
}

func fromShared(shared types.SharedState) engine.State {
	s := engine.NewEmptyState()
	s.SnakeDraft = shared.SnakeDraft
	s.CurrentTurn = shared.CurrentTurn

	teamIDs := make(map[string]bool, len(shared.Teams))
	for _, st := range shared.Teams {
		team := engine.Team{
			ID:      st.ID,
			Name:    st.Name,
			Color:   st.Color,
			Captain: st.Captain,
			Players: []engine.Player{},
		}
		for _, m := range st.Players {
			if !roster.ValidName(m.Name) {
				continue
			}
			team.Players = append(team.Players, engine.Player{ID: m.ID, Name: roster.CleanName(m.Name), TeamID: st.ID})
		}
		s.Teams = append(s.Teams, team)
		teamIDs[st.ID] = true
	}

	for _, sp := range shared.Players {
		if !roster.ValidName(sp.Name) {
			continue
		}
		p := engine.Player{ID: sp.ID, Name: roster.CleanName(sp.Name)}
		if sp.TeamID != nil {
			p.TeamID = *sp.TeamID
		}
		s.Players = append(s.Players, p)
	}

	for _, id := range shared.DraftOrder {
		if teamIDs[id] {
			s.DraftOrder = append(s.DraftOrder, id)
		}
	}

	s.Normalize()
	return s
}
