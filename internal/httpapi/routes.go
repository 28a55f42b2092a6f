package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/hub"
	"github.com/DoyleJ11/team-draft-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger, shareBaseURL string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Post("/drafts", CreateDraft(h, log))
	r.Post("/drafts/import", ImportDraft(h, log))
	r.Get("/drafts/{code}", GetDraft(h))
	r.Get("/drafts/{code}/share", GetShare(h, shareBaseURL))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	return r
}
