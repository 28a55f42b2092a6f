// Package draft owns one draft's state and routes every mutation through the
// undo history.
package draft

import (
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/codec"
	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/history"
	"github.com/DoyleJ11/team-draft-backend/internal/roster"
)

// Renderer is called after every successful mutation with the new state and
// the events that produced it. Undo and redo render with no events.
type Renderer func(s engine.State, events []engine.Event)

// Notifier receives a user-facing message when an operation is rejected.
type Notifier func(message string)

type Controller struct {
	state   engine.State
	history *history.Manager
	codec   *codec.Codec
	parser  *roster.Parser
	render  Renderer
	notify  Notifier
	log     *zap.Logger
}

type Option func(*Controller)

func WithCodec(c *codec.Codec) Option { return func(ctl *Controller) { ctl.codec = c } }
func WithParser(p *roster.Parser) Option { return func(ctl *Controller) { ctl.parser = p } }
func WithRenderer(r Renderer) Option { return func(ctl *Controller) { ctl.render = r } }
func WithNotifier(n Notifier) Option { return func(ctl *Controller) { ctl.notify = n } }
func WithLogger(log *zap.Logger) Option { return func(ctl *Controller) { ctl.log = log } }

func New(initial engine.State, opts ...Option) *Controller {
	c := &Controller{
		history: history.NewManager(),
		codec:   codec.New(codec.FlateCompressor{}),
		parser:  roster.NewParser(),
		render:  func(engine.State, []engine.Event) {},
		notify:  func(string) {},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = initial.Clone()
	c.state.Normalize()
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() engine.State {
	return c.state.Clone()
}

func (c *Controller) CanUndo() bool { return c.history.CanUndo() }
func (c *Controller) CanRedo() bool { return c.history.CanRedo() }

// HistoryDepth reports how many undo and redo snapshots are held.
func (c *Controller) HistoryDepth() (undo, redo int) { return c.history.Len() }

// Apply runs cmd through the engine. The pre-mutation state is recorded only
// once the engine accepts the command, so no-ops leave history untouched.
func (c *Controller) Apply(cmd engine.Command) ([]engine.Event, error) {
	return c.apply(cmd, false)
}

func (c *Controller) apply(cmd engine.Command, freshHistory bool) ([]engine.Event, error) {
	events, next, err := engine.Apply(c.state, cmd)
	if errors.Is(err, engine.ErrNoChange) {
		return nil, nil
	}
	if err != nil {
		c.log.Info("command rejected", zap.String("command", string(cmd.Type)), zap.Error(err))
		c.notify(err.Error())
		return nil, err
	}

	if freshHistory {
		c.history.Clear()
	} else {
		c.history.Save(c.state)
	}
	c.state = next
	if engine.ContainsEvent(events, engine.EvtDraftCompleted) {
		c.log.Info("draft completed", zap.Int("players", len(next.Players)), zap.Int("turn", next.CurrentTurn))
	}
	c.render(c.State(), events)
	return events, nil
}

func (c *Controller) PickPlayer(playerID string) ([]engine.Event, error) {
	return c.Apply(engine.Command{Type: engine.CmdPickPlayer, PlayerID: playerID})
}

// GenerateDraftOrder starts a new draft from the current teams and players.
// History from before the start is discarded.
func (c *Controller) GenerateDraftOrder() error {
	_, err := c.apply(engine.Command{Type: engine.CmdStartDraft}, true)
	return err
}

func (c *Controller) MoveTeam(index, direction int) error {
	_, err := c.Apply(engine.Command{Type: engine.CmdMoveTeam, Index: index, Direction: direction})
	return err
}

func (c *Controller) SetSnakeDraft(snake bool) error {
	_, err := c.Apply(engine.Command{Type: engine.CmdSetSnakeDraft, Snake: snake})
	return err
}

func (c *Controller) UpdateTeam(teamID, name, captain, color string) error {
	_, err := c.Apply(engine.Command{Type: engine.CmdUpdateTeam, TeamID: teamID, Name: name, Captain: captain, Color: color})
	return err
}

func (c *Controller) ReturnPlayer(playerID string) error {
	_, err := c.Apply(engine.Command{Type: engine.CmdReturnPlayer, PlayerID: playerID})
	return err
}

func (c *Controller) SetPlayerImage(playerID, image string) error {
	_, err := c.Apply(engine.Command{Type: engine.CmdSetPlayerImage, PlayerID: playerID, Image: image})
	return err
}

// SetView updates the UI-only fields. They are not part of the draft so the
// change is not recorded for undo.
func (c *Controller) SetView(editingTeam string, settingOrder bool) {
	if c.state.EditingTeam == editingTeam && c.state.IsSettingOrder == settingOrder {
		return
	}
	c.state.EditingTeam = editingTeam
	c.state.IsSettingOrder = settingOrder
	c.render(c.State(), nil)
}

func (c *Controller) Undo() bool {
	prev, ok := c.history.Undo(c.state)
	if !ok {
		return false
	}
	c.state = prev
	c.render(c.State(), nil)
	return true
}

func (c *Controller) Redo() bool {
	next, ok := c.history.Redo(c.state)
	if !ok {
		return false
	}
	c.state = next
	c.render(c.State(), nil)
	return true
}

func (c *Controller) ClearHistory() {
	c.history.Clear()
}

// Setup replaces the draft with teams and players parsed from in. On a
// validation failure every problem is reported and the state is unchanged.
func (c *Controller) Setup(in roster.Input) error {
	s, err := c.parser.Parse(in)
	if err != nil {
		problems := roster.Problems(err)
		c.log.Info("setup rejected", zap.Strings("problems", problems))
		for _, p := range problems {
			c.notify(p)
		}
		return err
	}
	c.replace(s)
	return nil
}

// Reset discards every team, player and snapshot.
func (c *Controller) Reset() {
	c.replace(engine.NewEmptyState())
}

func (c *Controller) EncodeState() (string, error) {
	return c.codec.Encode(c.state)
}

// DecodeState replaces the draft with the one carried by a share fragment. A
// corrupt fragment leaves the current state in place.
func (c *Controller) DecodeState(fragment string) error {
	s, err := c.codec.Decode(fragment)
	if err != nil {
		c.log.Debug("share fragment rejected", zap.Error(err))
		return err
	}
	c.replace(s)
	return nil
}

func (c *Controller) replace(s engine.State) {
	c.history.Clear()
	c.state = s
	c.render(c.State(), nil)
}
