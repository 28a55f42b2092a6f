package types

// SharedState is the payload carried in a share link fragment. Image data and
// UI-only fields are left out to keep links short.
type SharedState struct {
	Teams       []SharedTeam   `json:"teams"`
	Players     []SharedPlayer `json:"players"`
	SnakeDraft  bool           `json:"snakeDraft"`
	CurrentTurn int            `json:"currentTurn"`
	DraftOrder  []string       `json:"draftOrder"` // team ids
}

type SharedTeam struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Color   string         `json:"color"`
	Captain string         `json:"captain"`
	Players []SharedMember `json:"players"`
}

type SharedMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SharedPlayer struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	TeamID *string `json:"teamId"` // null while undrafted
}
