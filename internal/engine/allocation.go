package engine

import "strings"

// capacity describes how many drafted players each team may hold. Captains take a
// roster slot without coming out of the pool, so they count toward the total.
type capacity struct {
	numTeams         int
	remainder        int
	baseMax          int // drafted players per team, captain excluded
	maxWithRemainder int // for the teams absorbing one of the remainder slots
}

func newCapacity(s *State) capacity {
	captains := 0
	for _, team := range s.Teams {
		if strings.TrimSpace(team.Captain) != "" {
			captains++
		}
	}
	total := len(s.Players) + captains
	n := len(s.Teams)
	perTeam := total / n
	return capacity{
		numTeams:         n,
		remainder:        total % n,
		baseMax:          perTeam - 1,
		maxWithRemainder: perTeam,
	}
}

func pickPlayer(s *State, playerID string) ([]Event, error) {
	p := s.playerIndex(playerID)
	if p < 0 || s.Players[p].TeamID != "" {
		return nil, ErrNoChange
	}
	if len(s.Teams) == 0 {
		return nil, ErrNoChange
	}

	t := selectTeam(s)
	team := &s.Teams[t]

	s.Players[p].TeamID = team.ID
	team.Players = append(team.Players, s.Players[p])
	s.CurrentTurn++

	events := []Event{
		{Type: EvtPlayerPicked, PlayerID: playerID, TeamID: team.ID},
		{Type: EvtTurnAdvanced, Turn: s.CurrentTurn},
	}
	if s.Unassigned() == 0 {
		events = append(events, Event{Type: EvtDraftCompleted})
	}
	return events, nil
}

// selectTeam returns the index of the team receiving the next pick. CurrentTurn
// advances by one for every order slot the scan passes over, so it ends on the
// chosen slot, or one full cycle ahead when the scan falls back to the
// smallest team.
func selectTeam(s *State) int {
	c := newCapacity(s)

	atBase, atRemainder := 0, 0
	for _, team := range s.Teams {
		if len(team.Players) >= c.baseMax {
			atBase++
		}
		if len(team.Players) >= c.maxWithRemainder {
			atRemainder++
		}
	}

	allAtMax := atBase == c.numTeams && (c.remainder == 0 || atRemainder >= c.remainder)
	if allAtMax || len(s.DraftOrder) == 0 {
		return fewestPlayers(s.Teams)
	}

	orderLen := len(s.DraftOrder)
	turn := s.CurrentTurn
	// One full cycle visits every slot; stopping there also keeps the scan well
	// inside the 2x order length bound.
	for steps := 0; steps < orderLen; steps++ {
		idx := s.teamIndex(s.DraftOrder[turn%orderLen])
		if idx >= 0 {
			count := len(s.Teams[idx].Players)
			if count < c.baseMax || (count < c.maxWithRemainder && atRemainder < c.remainder) {
				s.CurrentTurn = turn
				return idx
			}
		}
		turn++
	}
	s.CurrentTurn = turn
	return fewestPlayers(s.Teams)
}

// fewestPlayers breaks ties by array order so allocation stays deterministic.
func fewestPlayers(teams []Team) int {
	best := 0
	for i := 1; i < len(teams); i++ {
		if len(teams[i].Players) < len(teams[best].Players) {
			best = i
		}
	}
	return best
}
