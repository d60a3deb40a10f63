package routers

import (
	"github.com/go-chi/chi/v5"

	"intervai/server/internal/handlers"
	"intervai/server/internal/middleware"
	"intervai/server/internal/models"
)

// InterviewRoutes mounts the chat relay and the record endpoints. Records
// always require a bearer token; chat only when authRequired is set.
func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, recordHandler *handlers.RecordHandler, jwtSecret string, authRequired bool) {
	requireAuth := middleware.RequireAuth(jwtSecret)

	router.Route("/api/interview", func(r chi.Router) {
		chat := r.With(middleware.ValidateRequest[*models.ChatRequest]())
		if authRequired {
			chat = r.With(requireAuth, middleware.ValidateRequest[*models.ChatRequest]())
		}
		chat.Post("/chat", interviewHandler.ChatHandler)

		if recordHandler != nil {
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(middleware.ValidateRequest[*models.RecordRequest]()).Post("/records", recordHandler.CreateHandler)
				r.Get("/records", recordHandler.ListHandler)
			})
		}
	})
}
