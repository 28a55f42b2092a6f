package draft

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/team-draft-backend/internal/codec"
	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/history"
	"github.com/DoyleJ11/team-draft-backend/internal/roster"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%02d", n)
	}
}

func setupInput(numTeams, numPlayers int) roster.Input {
	in := roster.Input{}
	for i := 0; i < numTeams; i++ {
		in.Teams = append(in.Teams, roster.TeamInput{Name: fmt.Sprintf("Team %d", i), Captain: fmt.Sprintf("Cap %d", i)})
	}
	for i := 0; i < numPlayers; i++ {
		in.Players += fmt.Sprintf("Player %d\n", i)
	}
	return in
}

// newStartedController returns a controller with a draft already running.
func newStartedController(t *testing.T, numTeams, numPlayers int, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithParser(&roster.Parser{NewID: sequentialIDs()})}, opts...)
	c := New(engine.NewEmptyState(), opts...)
	require.NoError(t, c.Setup(setupInput(numTeams, numPlayers)))
	require.NoError(t, c.GenerateDraftOrder())
	return c
}

func pickN(t *testing.T, c *Controller, n int) []engine.State {
	t.Helper()
	var after []engine.State
	for i := 0; i < n; i++ {
		s := c.State()
		var next string
		for _, p := range s.Players {
			if p.TeamID == "" {
				next = p.ID
				break
			}
		}
		require.NotEmpty(t, next, "no unassigned player left for pick %d", i+1)
		_, err := c.PickPlayer(next)
		require.NoError(t, err)
		after = append(after, c.State())
	}
	return after
}

func TestController_UndoRedoScenario(t *testing.T) {
	c := newStartedController(t, 3, 9)
	after := pickN(t, c, 5)

	for i := 0; i < 3; i++ {
		require.True(t, c.Undo())
	}
	for i := 0; i < 2; i++ {
		require.True(t, c.Redo())
	}

	assert.Equal(t, after[3], c.State(), "state should match the one right after the 4th pick")
}

func TestController_UndoIsInverseOfPick(t *testing.T) {
	c := newStartedController(t, 4, 10)
	pickN(t, c, 3)
	before := c.State()

	_, err := c.PickPlayer(before.Players[7].ID)
	require.NoError(t, err)
	require.NotEqual(t, before, c.State())

	require.True(t, c.Undo())
	assert.Equal(t, before, c.State())
}

func TestController_HistoryIsBounded(t *testing.T) {
	c := newStartedController(t, 2, 4)
	for i := 0; i < history.Limit+15; i++ {
		require.NoError(t, c.MoveTeam(0, 1))
	}

	undo, redo := c.HistoryDepth()
	assert.Equal(t, history.Limit, undo)
	assert.Zero(t, redo)
}

func TestController_NoOpsAreSilent(t *testing.T) {
	renders, notices := 0, 0
	c := newStartedController(t, 2, 4,
		WithRenderer(func(engine.State, []engine.Event) { renders++ }),
		WithNotifier(func(string) { notices++ }),
	)
	pickN(t, c, 1)
	first := c.State().Players[0].ID
	rendersBefore := renders
	undoBefore, _ := c.HistoryDepth()

	events, err := c.PickPlayer(first)
	assert.NoError(t, err)
	assert.Nil(t, events)

	events, err = c.PickPlayer("nobody")
	assert.NoError(t, err)
	assert.Nil(t, events)

	assert.Equal(t, rendersBefore, renders)
	assert.Zero(t, notices)
	undoAfter, _ := c.HistoryDepth()
	assert.Equal(t, undoBefore, undoAfter)

	c.ClearHistory()
	assert.False(t, c.Undo(), "undo with empty history is a no-op")
	assert.False(t, c.Redo())
	assert.Equal(t, rendersBefore, renders)
}

func TestController_RenderSeesCompletion(t *testing.T) {
	var last []engine.Event
	c := newStartedController(t, 2, 2, WithRenderer(func(_ engine.State, events []engine.Event) { last = events }))

	pickN(t, c, 1)
	assert.False(t, engine.ContainsEvent(last, engine.EvtDraftCompleted))

	pickN(t, c, 1)
	assert.True(t, engine.ContainsEvent(last, engine.EvtDraftCompleted))
}

func TestController_SetupRejectsBadInput(t *testing.T) {
	var notices []string
	c := newStartedController(t, 2, 4, WithNotifier(func(msg string) { notices = append(notices, msg) }))
	before := c.State()

	err := c.Setup(roster.Input{Teams: []roster.TeamInput{{Name: "Solo", Captain: "Cap"}}, Players: "Ann"})
	require.Error(t, err)
	assert.Equal(t, []string{
		"at least 2 teams are required",
		"at least 2 valid player names are required",
	}, notices)
	assert.Equal(t, before, c.State(), "state is unchanged after a rejected setup")
}

func TestController_StartDraftWithoutPlayersNotifies(t *testing.T) {
	var notices []string
	c := New(engine.NewEmptyState(), WithNotifier(func(msg string) { notices = append(notices, msg) }))

	err := c.GenerateDraftOrder()
	assert.ErrorIs(t, err, engine.ErrNothingToDraft)
	assert.Equal(t, []string{engine.ErrNothingToDraft.Error()}, notices)
	assert.False(t, c.State().DraftActive())
}

func TestController_GenerateDraftOrderClearsHistory(t *testing.T) {
	c := newStartedController(t, 2, 4)
	pickN(t, c, 2)
	require.True(t, c.CanUndo())

	require.NoError(t, c.GenerateDraftOrder())
	assert.False(t, c.CanUndo())
	assert.Zero(t, c.State().CurrentTurn)
}

func TestController_ShareRoundTrip(t *testing.T) {
	c := newStartedController(t, 3, 7, WithCodec(codec.New(codec.FlateCompressor{})))
	pickN(t, c, 4)
	require.NoError(t, c.SetPlayerImage(c.State().Players[0].ID, "img"))
	original := c.State()

	link, err := c.EncodeState()
	require.NoError(t, err)

	other := New(engine.NewEmptyState())
	require.NoError(t, other.DecodeState(link))
	got := other.State()

	assert.Equal(t, original.Teams, got.Teams)
	assert.Equal(t, original.Players, got.Players)
	assert.Equal(t, original.DraftOrder, got.DraftOrder)
	assert.Equal(t, original.CurrentTurn, got.CurrentTurn)
	assert.Empty(t, got.Images)
	assert.False(t, other.CanUndo())
}

func TestController_DecodeFailureKeepsState(t *testing.T) {
	c := newStartedController(t, 2, 4)
	pickN(t, c, 1)
	before := c.State()

	err := c.DecodeState("%%%corrupt%%%")
	assert.ErrorIs(t, err, codec.ErrDecode)
	assert.Equal(t, before, c.State())
	assert.True(t, c.CanUndo())
}

func TestController_SetViewIsNotRecorded(t *testing.T) {
	renders := 0
	c := newStartedController(t, 2, 4, WithRenderer(func(engine.State, []engine.Event) { renders++ }))
	rendersBefore := renders

	c.SetView("id01", true)
	assert.Equal(t, rendersBefore+1, renders)
	assert.Equal(t, "id01", c.State().EditingTeam)
	assert.False(t, c.CanUndo())

	c.SetView("id01", true)
	assert.Equal(t, rendersBefore+1, renders, "unchanged view does not render")
}

func TestController_ReturnPlayerAndUndo(t *testing.T) {
	c := newStartedController(t, 2, 4)
	pickN(t, c, 2)
	picked := c.State()
	id := picked.Players[0].ID

	require.NoError(t, c.ReturnPlayer(id))
	p, _ := c.State().Player(id)
	assert.Empty(t, p.TeamID)

	require.True(t, c.Undo())
	assert.Equal(t, picked, c.State())
}

func TestController_Reset(t *testing.T) {
	c := newStartedController(t, 2, 4)
	pickN(t, c, 2)

	c.Reset()
	s := c.State()
	assert.Empty(t, s.Teams)
	assert.Empty(t, s.Players)
	assert.False(t, s.DraftActive())
	assert.False(t, c.CanUndo())
}

func TestController_StateIsACopy(t *testing.T) {
	c := newStartedController(t, 2, 4)
	s := c.State()
	s.Players[0].Name = "mutated"
	s.Teams[0].Name = "mutated"

	assert.NotEqual(t, "mutated", c.State().Players[0].Name)
	assert.NotEqual(t, "mutated", c.State().Teams[0].Name)
}
