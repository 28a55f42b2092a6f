// Package roster turns raw setup input into draft teams and players.
package roster

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

// ValidationError describes one problem with setup input.
type ValidationError struct {
	Problem string
}

func (e *ValidationError) Error() string { return e.Problem }

func invalid(format string, args ...any) error {
	return &ValidationError{Problem: fmt.Sprintf(format, args...)}
}

type TeamInput struct {
	Name    string `json:"name"`
	Captain string `json:"captain"`
	Color   string `json:"color,omitempty"`
}

type Input struct {
	Teams      []TeamInput `json:"teams"`
	Players    string      `json:"players"` // newline or comma separated
	SnakeDraft bool        `json:"snake_draft"`
}

// Palette fills in colors for teams set up without one.
var Palette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4",
	"#42d4f4", "#f032e6", "#bfef45", "#469990", "#9a6324",
}

type Parser struct {
	NewID func() string
}

func NewParser() *Parser {
	return &Parser{NewID: uuid.NewString}
}

// Parse validates in and builds a fresh, undrafted state. Every problem found is
// returned, combined with multierr; each one is a *ValidationError.
func (p *Parser) Parse(in Input) (engine.State, error) {
	var errs error

	if len(in.Teams) < 2 {
		errs = multierr.Append(errs, invalid("at least 2 teams are required"))
	}
	for i, t := range in.Teams {
		if CleanName(t.Name) == "" {
			errs = multierr.Append(errs, invalid("team %d is missing a name", i+1))
		}
		if CleanName(t.Captain) == "" {
			errs = multierr.Append(errs, invalid("team %d is missing a captain", i+1))
		}
	}
	names := SplitNames(in.Players)
	if len(names) < 2 {
		errs = multierr.Append(errs, invalid("at least 2 valid player names are required"))
	}
	if errs != nil {
		return engine.State{}, errs
	}

	s := engine.NewEmptyState()
	s.SnakeDraft = in.SnakeDraft
	for i, t := range in.Teams {
		color := t.Color
		if color == "" {
			color = Palette[i%len(Palette)]
		}
		s.Teams = append(s.Teams, engine.Team{
			ID:      p.NewID(),
			Name:    CleanName(t.Name),
			Captain: CleanName(t.Captain),
			Color:   color,
			Players: []engine.Player{},
		})
	}
	for _, name := range names {
		s.Players = append(s.Players, engine.Player{ID: p.NewID(), Name: name})
	}
	return s, nil
}

// Problems flattens a Parse error into user-facing messages.
func Problems(err error) []string {
	var out []string
	for _, e := range multierr.Errors(err) {
		out = append(out, e.Error())
	}
	return out
}
