package engine

// GenerateOrder lays out whole rounds of team ids until every player has a turn.
// With snake enabled every odd round runs in reverse.
func GenerateOrder(teams []Team, snake bool, totalPlayers int) []string {
	if len(teams) == 0 || totalPlayers <= 0 {
		return []string{}
	}

	rounds := (totalPlayers + len(teams) - 1) / len(teams)
	order := make([]string, 0, rounds*len(teams))
	for r := 0; r < rounds; r++ {
		if snake && r%2 == 1 {
			for i := len(teams) - 1; i >= 0; i-- {
				order = append(order, teams[i].ID)
			}
			continue
		}
		for _, team := range teams {
			order = append(order, team.ID)
		}
	}
	return order
}

// TeamOnTurn returns the team whose turn it is, if a draft is active.
func TeamOnTurn(s State) (Team, bool) {
	if len(s.DraftOrder) == 0 {
		return Team{}, false
	}
	idx := s.teamIndex(s.DraftOrder[s.CurrentTurn%len(s.DraftOrder)])
	if idx < 0 {
		return Team{}, false
	}
	return s.Teams[idx], true
}
