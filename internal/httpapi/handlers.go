package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/hub"
	"github.com/DoyleJ11/team-draft-backend/internal/lobby"
	"github.com/DoyleJ11/team-draft-backend/internal/roster"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

type draftResponse struct {
	Code     string `json:"code"`
	Fragment string `json:"fragment,omitempty"`
	Source   string `json:"source,omitempty"` // "fragment" | "store"
}

type importRequest struct {
	Code     string `json:"code,omitempty"`
	Fragment string `json:"fragment"`
}

type viewResponse struct {
	Version  int          `json:"version"`
	Clients  int          `json:"clients"`
	State    engine.State `json:"state"`
	Fragment string       `json:"fragment"`
	CanUndo  bool         `json:"can_undo"`
	CanRedo  bool         `json:"can_redo"`
}

type shareResponse struct {
	Fragment string `json:"fragment"`
	URL      string `json:"url"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newCode picks a code no running lobby uses.
func newCode(h *hub.Hub, log *zap.Logger) (string, error) {
	for {
		c, err := GenerateCode()
		if err != nil {
			return "", err
		}
		lb, err := h.Lookup(c)
		if err != nil {
			return "", err
		}
		if lb == nil {
			return c, nil
		}
		log.Debug("collision on code, regenerating", zap.String("code", c))
	}
}

// CreateDraft starts a lobby from setup input.
func CreateDraft(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in roster.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json"})
			return
		}

		code, err := newCode(h, log)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate code"})
			return
		}
		lb, err := h.Create(code, engine.NewEmptyState())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to create lobby"})
			return
		}

		if err := lb.ApplySetup(in); err != nil {
			if errors.Is(err, lobby.ErrClosed) {
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to create lobby"})
				return
			}
			h.Send(hub.RemoveLobby{Code: code})
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid setup", Problems: roster.Problems(err)})
			return
		}

		fragment, err := lb.ShareFragment()
		if err != nil {
			log.Warn("encode new draft", zap.String("code", code), zap.Error(err))
		}
		writeJSON(w, http.StatusCreated, draftResponse{Code: code, Fragment: fragment})
	}
}

// ImportDraft opens a draft from a share fragment. With a code, the persisted
// draft for that code is the fallback when the fragment can't be decoded.
func ImportDraft(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req importRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json"})
			return
		}

		if req.Code == "" {
			s, err := h.Codec().Decode(req.Fragment)
			if err != nil {
				log.Debug("import rejected", zap.Error(err))
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid share link"})
				return
			}
			code, err := newCode(h, log)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate code"})
				return
			}
			if _, err := h.Create(code, s); err != nil {
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to create lobby"})
				return
			}
			writeJSON(w, http.StatusCreated, draftResponse{Code: code, Fragment: req.Fragment, Source: "fragment"})
			return
		}

		lb, err := h.Ensure(req.Code)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to open lobby"})
			return
		}

		source := "store"
		if req.Fragment != "" {
			if err := lb.ImportFragment(req.Fragment); err == nil {
				source = "fragment"
			} else {
				log.Debug("fragment rejected, using stored draft", zap.String("code", req.Code), zap.Error(err))
			}
		}
		fragment, err := lb.ShareFragment()
		if err != nil {
			log.Warn("encode imported draft", zap.String("code", req.Code), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to encode draft"})
			return
		}
		writeJSON(w, http.StatusOK, draftResponse{Code: req.Code, Fragment: fragment, Source: source})
	}
}

func GetDraft(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, _ := h.Lookup(chi.URLParam(r, "code"))
		if lb == nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "lobby not found"})
			return
		}
		v, err := lb.CurrentView()
		if err != nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "lobby not found"})
			return
		}
		writeJSON(w, http.StatusOK, viewResponse{
			Version:  v.Version,
			Clients:  v.NumClients,
			State:    v.State,
			Fragment: v.Fragment,
			CanUndo:  v.CanUndo,
			CanRedo:  v.CanRedo,
		})
	}
}

func GetShare(h *hub.Hub, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, _ := h.Lookup(chi.URLParam(r, "code"))
		if lb == nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "lobby not found"})
			return
		}
		fragment, err := lb.ShareFragment()
		switch {
		case errors.Is(err, lobby.ErrClosed):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "lobby not found"})
			return
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to encode draft"})
			return
		}
		writeJSON(w, http.StatusOK, shareResponse{Fragment: fragment, URL: baseURL + "#" + fragment})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
