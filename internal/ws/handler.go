package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/hub"
	"github.com/DoyleJ11/team-draft-backend/internal/lobby"
	"github.com/DoyleJ11/team-draft-backend/internal/types"
)

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		lb, err := h.Lookup(code)
		if err != nil {
			http.Error(w, "server shutting down", http.StatusServiceUnavailable)
			return
		}
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			log.Debug("websocket accept", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan lobby.Snapshot, 8)
		clientID := uuid.NewString()
		log := log.With(zap.String("code", code), zap.String("client", clientID))

		if !lb.Send(lobby.Join{ClientID: clientID, Outbox: out}) {
			return
		}
		defer lb.Send(lobby.Leave{ClientID: clientID})

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			// Outbox closed: lobby dropped us or shut down.
			defer conn.Close(websocket.StatusGoingAway, "lobby closed")
			for {
				select {
				case snap, ok := <-out:
					if !ok {
						return
					}
					payload, _ := json.Marshal(toServerMessage(snap))
					ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
					err := conn.Write(ctx, websocket.MessageText, payload)
					cancel()
					if err != nil {
						log.Debug("websocket write", zap.Error(err))
					}
				case <-lb.Done():
					return
				case <-writeCtx.Done():
					return
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("websocket read", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			msg, ok := toLobbyMsg(cm)
			if !ok {
				writeError(r.Context(), conn, "unknown type")
				continue
			}

			if !lb.Send(msg) {
				return
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, message string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Error: message})
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

func toServerMessage(snap lobby.Snapshot) types.ServerMessage {
	msg := types.ServerMessage{
		Type:     "StateSnapshot",
		Version:  snap.Version,
		State:    &snap.State,
		Events:   snap.Events,
		Fragment: snap.Fragment,
		CanUndo:  snap.CanUndo,
		CanRedo:  snap.CanRedo,
	}
	if snap.Notice != "" {
		msg.Type = "Notice"
		msg.Notice = snap.Notice
	}
	return msg
}

func toLobbyMsg(m types.ClientMessage) (lobby.Msg, bool) {
	switch m.Type {
	case "Undo":
		return lobby.Undo{}, true
	case "Redo":
		return lobby.Redo{}, true
	case "ClearHistory":
		return lobby.ClearHistory{}, true
	}

	cmd, ok := toEngineCommand(m)
	if !ok {
		return nil, false
	}
	return lobby.FromClient{Cmd: cmd}, true
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case "PickPlayer":
		if m.PlayerID == "" {
			return engine.Command{}, false
		}
		return engine.Command{Type: engine.CmdPickPlayer, PlayerID: m.PlayerID}, true
	case "ReturnPlayer":
		if m.PlayerID == "" {
			return engine.Command{}, false
		}
		return engine.Command{Type: engine.CmdReturnPlayer, PlayerID: m.PlayerID}, true
	case "StartDraft":
		return engine.Command{Type: engine.CmdStartDraft}, true
	case "MoveTeam":
		if m.Direction != -1 && m.Direction != 1 {
			return engine.Command{}, false
		}
		return engine.Command{Type: engine.CmdMoveTeam, Index: m.Index, Direction: m.Direction}, true
	case "SetSnakeDraft":
		return engine.Command{Type: engine.CmdSetSnakeDraft, Snake: m.Snake}, true
	case "UpdateTeam":
		return engine.Command{Type: engine.CmdUpdateTeam, TeamID: m.TeamID, Name: m.Name, Captain: m.Captain, Color: m.Color}, true
	case "SetPlayerImage":
		if m.PlayerID == "" {
			return engine.Command{}, false
		}
		return engine.Command{Type: engine.CmdSetPlayerImage, PlayerID: m.PlayerID, Image: m.Image}, true
	default:
		return engine.Command{}, false
	}
}
