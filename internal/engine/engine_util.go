package engine

func NewEmptyState() State {
	return State{
		Teams:      []Team{},
		Players:    []Player{},
		DraftOrder: []string{},
		Images:     map[string]string{},
	}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// Clone returns a deep copy that shares no slices or maps with s.
func (s State) Clone() State {
	c := s
	c.Teams = make([]Team, len(s.Teams))
	for i, team := range s.Teams {
		team.Players = append([]Player{}, team.Players...)
		c.Teams[i] = team
	}
	c.Players = append([]Player{}, s.Players...)
	c.DraftOrder = append([]string{}, s.DraftOrder...)
	c.Images = make(map[string]string, len(s.Images))
	for k, v := range s.Images {
		c.Images[k] = v
	}
	return c
}

// Normalize re-derives every team roster from the canonical player list. Player
// links to teams that no longer exist are cleared. Rosters keep their existing
// order for players that still belong; the rest follow in player list order.
func (s *State) Normalize() {
	known := make(map[string]int, len(s.Teams))
	for i := range s.Teams {
		known[s.Teams[i].ID] = i
	}
	canonical := make(map[string]Player, len(s.Players))
	for i := range s.Players {
		p := &s.Players[i]
		if _, ok := known[p.TeamID]; p.TeamID != "" && !ok {
			p.TeamID = ""
		}
		canonical[p.ID] = *p
	}

	placed := make(map[string]bool, len(s.Players))
	for i := range s.Teams {
		team := &s.Teams[i]
		roster := make([]Player, 0, len(team.Players))
		for _, member := range team.Players {
			p, ok := canonical[member.ID]
			if !ok || p.TeamID != team.ID || placed[p.ID] {
				continue
			}
			roster = append(roster, p)
			placed[p.ID] = true
		}
		team.Players = roster
	}
	for _, p := range s.Players {
		if p.TeamID == "" || placed[p.ID] {
			continue
		}
		idx := known[p.TeamID]
		s.Teams[idx].Players = append(s.Teams[idx].Players, p)
		placed[p.ID] = true
	}
	if len(s.Teams) == 0 || len(s.Players) == 0 {
		s.DraftOrder = []string{}
	}
	if s.CurrentTurn < 0 {
		s.CurrentTurn = 0
	}
}

// DraftActive reports whether a draft order has been generated.
func (s State) DraftActive() bool {
	return len(s.DraftOrder) > 0
}

// Unassigned counts the players still in the pool.
func (s State) Unassigned() int {
	n := 0
	for _, p := range s.Players {
		if p.TeamID == "" {
			n++
		}
	}
	return n
}

func (s State) Player(id string) (Player, bool) {
	idx := s.playerIndex(id)
	if idx < 0 {
		return Player{}, false
	}
	return s.Players[idx], true
}

func (s State) Team(id string) (Team, bool) {
	idx := s.teamIndex(id)
	if idx < 0 {
		return Team{}, false
	}
	return s.Teams[idx], true
}

func (s State) playerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s State) teamIndex(id string) int {
	for i, t := range s.Teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}
