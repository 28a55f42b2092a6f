package lobby

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/codec"
	"github.com/DoyleJ11/team-draft-backend/internal/draft"
	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/roster"
	"github.com/DoyleJ11/team-draft-backend/internal/store"
)

// ErrClosed is returned to callers whose request the lobby can no longer answer.
var ErrClosed = errors.New("lobby closed")

type Msg interface{ isLobbyMsg() }

type FromClient struct {
	Cmd engine.Command
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Undo struct{}

func (Undo) isLobbyMsg() {}

type Redo struct{}

func (Redo) isLobbyMsg() {}

type ClearHistory struct{}

func (ClearHistory) isLobbyMsg() {}

// Setup replaces the draft with freshly parsed teams and players.
type Setup struct {
	Input roster.Input
	Reply chan error
}

func (Setup) isLobbyMsg() {}

// Import replaces the draft with the one carried by a share fragment.
type Import struct {
	Fragment string
	Reply    chan error
}

func (Import) isLobbyMsg() {}

// GetShare encodes the current state right away, skipping the debounce.
type GetShare struct {
	Reply chan Share
}

func (GetShare) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// Snapshot is what clients receive. Notice-only snapshots repeat the current
// version; Fragment is filled in once the debounced share link is recomputed.
type Snapshot struct {
	Version  int
	State    engine.State
	Events   []engine.Event
	Notice   string
	Fragment string
	CanUndo  bool
	CanRedo  bool
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
	Fragment   string
	CanUndo    bool
	CanRedo    bool
}

type Share struct {
	Fragment string
	Err      error
}

type Config struct {
	Code       string
	Store      store.Store
	Codec      *codec.Codec
	ShareDelay time.Duration // quiet period before the share link is rewritten
	Log        *zap.Logger
}

type Lobby struct {
	inbox    chan Msg
	ctrl     *draft.Controller
	cfg      Config
	version  int
	fragment string
	clients  map[string]chan Snapshot
	ctx      context.Context
	cancel   context.CancelFunc
	log      *zap.Logger

	shareTimer *time.Timer
	shareC     <-chan time.Time
}

func NewLobby(parent context.Context, cfg Config, initial engine.State) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Codec == nil {
		cfg.Codec = codec.New(codec.FlateCompressor{})
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}

	l := &Lobby{
		inbox:   make(chan Msg, 64), // Small buffer
		cfg:     cfg,
		version: 0,
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
		log:     cfg.Log.With(zap.String("code", cfg.Code)),
	}
	l.ctrl = draft.New(initial,
		draft.WithCodec(cfg.Codec),
		draft.WithLogger(l.log),
		draft.WithRenderer(l.onRender),
		draft.WithNotifier(l.onNotice),
	)
	if fragment, err := l.ctrl.EncodeState(); err == nil {
		l.fragment = fragment
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case <-l.shareC:
			l.shareC = nil
			l.publishShare()

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- l.snapshot(nil)

			case Leave:
				if ch, ok := l.clients[msg.ClientID]; ok {
					close(ch)
					delete(l.clients, msg.ClientID)
				}

			case FromClient:
				// Rejections reach clients through onNotice; no-ops are dropped.
				if msg.Cmd.Type == engine.CmdStartDraft {
					_ = l.ctrl.GenerateDraftOrder()
					break
				}
				if _, err := l.ctrl.Apply(msg.Cmd); err != nil {
					l.log.Debug("command failed", zap.String("command", string(msg.Cmd.Type)), zap.Error(err))
				}

			case Undo:
				l.ctrl.Undo()

			case Redo:
				l.ctrl.Redo()

			case ClearHistory:
				l.ctrl.ClearHistory()
				l.broadcast(l.snapshot(nil))

			case Setup:
				msg.Reply <- l.ctrl.Setup(msg.Input)

			case Import:
				msg.Reply <- l.ctrl.DecodeState(msg.Fragment)

			case GetShare:
				fragment, err := l.ctrl.EncodeState()
				msg.Reply <- Share{Fragment: fragment, Err: err}

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.ctrl.State(),
					Fragment:   l.fragment,
					CanUndo:    l.ctrl.CanUndo(),
					CanRedo:    l.ctrl.CanRedo(),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

// onRender runs inside the loop after every successful mutation.
func (l *Lobby) onRender(s engine.State, events []engine.Event) {
	l.version++
	l.persist(s)
	l.scheduleShare()
	l.broadcast(l.snapshotOf(s, events))
}

func (l *Lobby) onNotice(message string) {
	snap := l.snapshot(nil)
	snap.Notice = message
	l.broadcast(snap)
}

func (l *Lobby) persist(s engine.State) {
	ctx, cancel := context.WithTimeout(l.ctx, 2*time.Second)
	defer cancel()
	if err := l.cfg.Store.Save(ctx, l.cfg.Code, s); err != nil {
		l.log.Warn("persist draft", zap.Error(err), zap.Int("version", l.version))
	}
}

// scheduleShare restarts the quiet period; a burst of mutations produces a
// single share link write once it elapses.
func (l *Lobby) scheduleShare() {
	if l.shareTimer == nil {
		l.shareTimer = time.NewTimer(l.cfg.ShareDelay)
	} else {
		l.shareTimer.Reset(l.cfg.ShareDelay)
	}
	l.shareC = l.shareTimer.C
}

func (l *Lobby) publishShare() {
	fragment, err := l.ctrl.EncodeState()
	if err != nil {
		l.log.Warn("encode share link", zap.Error(err))
		return
	}
	l.fragment = fragment
	l.broadcast(l.snapshot(nil))
}

func (l *Lobby) snapshot(events []engine.Event) Snapshot {
	return l.snapshotOf(l.ctrl.State(), events)
}

func (l *Lobby) snapshotOf(s engine.State, events []engine.Event) Snapshot {
	return Snapshot{
		Version:  l.version,
		State:    s,
		Events:   events,
		Fragment: l.fragment,
		CanUndo:  l.ctrl.CanUndo(),
		CanRedo:  l.ctrl.CanRedo(),
	}
}

func (l *Lobby) shutdown() {
	if l.shareTimer != nil {
		l.shareTimer.Stop()
	}
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Send delivers msg unless the lobby has already shut down.
func (l *Lobby) Send(msg Msg) bool {
	if l.ctx.Err() != nil {
		return false
	}
	select {
	case l.inbox <- msg:
		return true
	case <-l.ctx.Done():
		return false
	}
}

// Done is closed once the lobby has shut down.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }

// A request queued just before Shutdown is never answered, so every
// round-trip also watches Done.
func await[T any](l *Lobby, reply <-chan T) (T, error) {
	select {
	case v := <-reply:
		return v, nil
	case <-l.Done():
		// The loop may have answered right before stopping.
		select {
		case v := <-reply:
			return v, nil
		default:
		}
		var zero T
		return zero, ErrClosed
	}
}

// CurrentView returns the lobby's state as GetState reports it.
func (l *Lobby) CurrentView() (View, error) {
	reply := make(chan View, 1)
	if !l.Send(GetState{Reply: reply}) {
		return View{}, ErrClosed
	}
	return await(l, reply)
}

// ShareFragment encodes the current state right away.
func (l *Lobby) ShareFragment() (string, error) {
	reply := make(chan Share, 1)
	if !l.Send(GetShare{Reply: reply}) {
		return "", ErrClosed
	}
	res, err := await(l, reply)
	if err != nil {
		return "", err
	}
	return res.Fragment, res.Err
}

// ApplySetup replaces the draft with parsed setup input.
func (l *Lobby) ApplySetup(in roster.Input) error {
	reply := make(chan error, 1)
	if !l.Send(Setup{Input: in, Reply: reply}) {
		return ErrClosed
	}
	res, err := await(l, reply)
	if err != nil {
		return err
	}
	return res
}

// ImportFragment replaces the draft with the one in a share fragment.
func (l *Lobby) ImportFragment(fragment string) error {
	reply := make(chan error, 1)
	if !l.Send(Import{Fragment: fragment, Reply: reply}) {
		return ErrClosed
	}
	res, err := await(l, reply)
	if err != nil {
		return err
	}
	return res
}
