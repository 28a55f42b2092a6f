package hub

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/codec"
	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/lobby"
	"github.com/DoyleJ11/team-draft-backend/internal/store"
)

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	Code  string
	State engine.State
	Reply chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

// EnsureLobby returns the running lobby for Code, starting it from the
// persisted draft (or an empty one) if needed.
type EnsureLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type RemoveLobby struct {
	Code string
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

type Config struct {
	Store       store.Store
	Compression bool
	ShareDelay  time.Duration
	Log         *zap.Logger
}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	cfg     Config
	codec   *codec.Codec
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

func NewHub(parent context.Context, cfg Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	// The compression strategy is chosen once here rather than per call.
	var comp codec.Compressor = codec.Identity{}
	if cfg.Compression {
		comp = codec.FlateCompressor{}
	}

	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		cfg:     cfg,
		codec:   codec.New(comp),
		ctx:     ctx,
		cancel:  cancel,
		log:     cfg.Log,
	}
	go h.loop()
	return h
}

// ErrClosed is returned by requests made after the hub stopped.
var ErrClosed = errors.New("hub closed")

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Send delivers msg unless the hub has already shut down.
func (h *Hub) Send(msg HubMsg) bool {
	if h.ctx.Err() != nil {
		return false
	}
	select {
	case h.inbox <- msg:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Done is closed once the hub has shut down.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) await(reply <-chan *lobby.Lobby) (*lobby.Lobby, error) {
	select {
	case lb := <-reply:
		return lb, nil
	case <-h.Done():
		select {
		case lb := <-reply:
			return lb, nil
		default:
		}
		return nil, ErrClosed
	}
}

func (h *Hub) request(msg HubMsg, reply <-chan *lobby.Lobby) (*lobby.Lobby, error) {
	if !h.Send(msg) {
		return nil, ErrClosed
	}
	return h.await(reply)
}

// Lookup returns the running lobby for code, or nil if there is none.
func (h *Hub) Lookup(code string) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	return h.request(GetLobby{Code: code, Reply: reply}, reply)
}

// Create starts a lobby for code from s, or returns the one already running.
func (h *Hub) Create(code string, s engine.State) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	return h.request(CreateLobby{Code: code, State: s, Reply: reply}, reply)
}

// Ensure returns the lobby for code, starting it from the store if needed.
func (h *Hub) Ensure(code string) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	return h.request(EnsureLobby{Code: code, Reply: reply}, reply)
}

// Codec is the codec shared by every lobby in the hub.
func (h *Hub) Codec() *codec.Codec { return h.codec }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					msg.Reply <- lb
					break
				}
				lb := h.start(msg.Code, msg.State)
				msg.Reply <- lb

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case EnsureLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					msg.Reply <- lb
					break
				}
				msg.Reply <- h.start(msg.Code, h.load(msg.Code))

			case RemoveLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					lb.Send(lobby.Shutdown{})
					delete(h.lobbies, msg.Code)
				}

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) start(code string, initial engine.State) *lobby.Lobby {
	lb := lobby.NewLobby(h.ctx, lobby.Config{
		Code:       code,
		Store:      h.cfg.Store,
		Codec:      h.codec,
		ShareDelay: h.cfg.ShareDelay,
		Log:        h.log,
	}, initial)
	h.lobbies[code] = lb
	h.log.Info("lobby started", zap.String("code", code), zap.Int("lobbies", len(h.lobbies)))
	return lb
}

// load reads the persisted draft once, when its lobby starts.
func (h *Hub) load(code string) engine.State {
	ctx, cancel := context.WithTimeout(h.ctx, 5*time.Second)
	defer cancel()
	s, err := h.cfg.Store.Load(ctx, code)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return engine.NewEmptyState()
	case err != nil:
		h.log.Warn("load draft", zap.String("code", code), zap.Error(err))
		return engine.NewEmptyState()
	}
	return s
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		lb.Send(lobby.Shutdown{})
	}
	clear(h.lobbies)
}
