package codec

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

// draftInProgress builds a started draft with a few picks made.
func draftInProgress(t *testing.T) engine.State {
	t.Helper()
	s := engine.NewEmptyState()
	s.SnakeDraft = true
	for i := 0; i < 3; i++ {
		s.Teams = append(s.Teams, engine.Team{
			ID:      fmt.Sprintf("team-%d", i),
			Name:    fmt.Sprintf("Team %d", i),
			Color:   "#00000" + fmt.Sprint(i),
			Captain: fmt.Sprintf("Cap %d", i),
			Players: []engine.Player{},
		})
	}
	for i := 0; i < 8; i++ {
		s.Players = append(s.Players, engine.Player{ID: fmt.Sprintf("player-%d", i), Name: fmt.Sprintf("Player Ø%d", i)})
	}

	_, s, err := engine.Apply(s, engine.Command{Type: engine.CmdStartDraft})
	require.NoError(t, err)
	for _, id := range []string{"player-3", "player-0", "player-6", "player-1"} {
		_, s, err = engine.Apply(s, engine.Command{Type: engine.CmdPickPlayer, PlayerID: id})
		require.NoError(t, err)
	}
	s.Images["player-3"] = "data:image/webp;base64,AAAA"
	s.EditingTeam = "team-1"
	s.IsSettingOrder = true
	return s
}

func rawLink(payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

func TestCodec_RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		comp Compressor
	}{
		{name: "flate", comp: FlateCompressor{}},
		{name: "identity", comp: Identity{}},
		{name: "nil compressor", comp: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(tc.comp)
			s := draftInProgress(t)

			link, err := c.Encode(s)
			require.NoError(t, err)
			assert.NotContains(t, link, "+")
			assert.NotContains(t, link, "/")
			assert.NotContains(t, link, "=")

			got, err := c.Decode(link)
			require.NoError(t, err)

			assert.Equal(t, s.Teams, got.Teams)
			assert.Equal(t, s.Players, got.Players)
			assert.Equal(t, s.DraftOrder, got.DraftOrder)
			assert.Equal(t, s.SnakeDraft, got.SnakeDraft)
			assert.Equal(t, s.CurrentTurn, got.CurrentTurn)

			assert.Empty(t, got.Images, "images are not part of a share link")
			assert.Empty(t, got.EditingTeam)
			assert.False(t, got.IsSettingOrder)
		})
	}
}

func TestCodec_DecodeAcceptsLeadingHash(t *testing.T) {
	c := New(FlateCompressor{})
	link, err := c.Encode(draftInProgress(t))
	require.NoError(t, err)

	_, err = c.Decode("#" + link)
	assert.NoError(t, err)
}

func TestCodec_DecodeFallsBackToUncompressed(t *testing.T) {
	link, err := New(Identity{}).Encode(draftInProgress(t))
	require.NoError(t, err)

	got, err := New(FlateCompressor{}).Decode(link)
	require.NoError(t, err)
	assert.Len(t, got.Players, 8)
}

func TestCodec_DecodeRejects(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{name: "invalid base64 characters", input: "not*valid!base64$$"},
		{name: "empty", input: ""},
		{name: "not json", input: rawLink("hello there")},
		{name: "json array", input: rawLink(`[1,2,3]`)},
		{name: "missing players", input: rawLink(`{"teams":[]}`)},
		{name: "missing teams", input: rawLink(`{"players":[]}`)},
		{name: "wrong field types", input: rawLink(`{"teams":"x","players":[]}`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, comp := range []Compressor{FlateCompressor{}, Identity{}} {
				var got engine.State
				var err error
				require.NotPanics(t, func() {
					got, err = New(comp).Decode(tc.input)
				})
				assert.ErrorIs(t, err, ErrDecode)
				assert.Empty(t, got.Teams)
			}
		})
	}
}

func TestCodec_DecodeDropsUnknownOrderEntries(t *testing.T) {
	link := rawLink(`{
		"teams":[{"id":"a","name":"A","color":"#fff","captain":"Cap","players":[]}],
		"players":[{"id":"p1","name":"Ann","teamId":null}],
		"snakeDraft":false,
		"currentTurn":1,
		"draftOrder":["a","ghost","a"]
	}`)

	got, err := New(Identity{}).Decode(link)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a"}, got.DraftOrder)
	assert.Equal(t, 1, got.CurrentTurn)
}

func TestCodec_DecodeFiltersCorruptNames(t *testing.T) {
	link := rawLink(`{
		"teams":[{"id":"a","name":"A","color":"#fff","captain":"Cap","players":[
			{"id":"p1","name":"Ann"},
			{"id":"p2","name":"chrome-extension://abc/popup.html"}
		]}],
		"players":[
			{"id":"p1","name":"Ann","teamId":"a"},
			{"id":"p2","name":"chrome-extension://abc/popup.html","teamId":"a"},
			{"id":"p3","name":"undefined","teamId":null},
			{"id":"p4","name":"  Bea  ","teamId":null},
			{"id":"p5","name":"Cy","teamId":"missing-team"}
		],
		"draftOrder":[]
	}`)

	got, err := New(FlateCompressor{}).Decode(link)
	require.NoError(t, err)

	ids := make([]string, 0, len(got.Players))
	for _, p := range got.Players {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p1", "p4", "p5"}, ids)
	assert.Equal(t, "Bea", got.Players[1].Name)
	assert.Empty(t, got.Players[2].TeamID, "links to unknown teams are cleared")

	require.Len(t, got.Teams[0].Players, 1)
	assert.Equal(t, "p1", got.Teams[0].Players[0].ID)
}

func TestCodec_NegativeTurnIsClamped(t *testing.T) {
	link := rawLink(`{"teams":[],"players":[],"currentTurn":-4}`)
	got, err := New(nil).Decode(link)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentTurn)
}

func TestFlateCompressor_ShrinksRepetitivePayloads(t *testing.T) {
	payload := []byte(strings.Repeat(`{"id":"player","name":"Player"}`, 50))
	packed, err := FlateCompressor{}.Compress(payload)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(payload))

	back, err := FlateCompressor{}.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, payload, back)
}
