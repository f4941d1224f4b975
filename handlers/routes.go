package handlers

import (
	"notes-api/middleware"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the /api route groups on r.
func (h *Handler) Routes(r chi.Router, errs *middleware.ErrorHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", errs.Wrap(h.Login))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", errs.Wrap(h.ListUsers))
			r.Post("/", errs.Wrap(h.CreateUser))
		})

		// Token checks run per route so unmatched paths still answer 404.
		optionalAuth := middleware.OptionalAuth(h.Tokens, errs)
		r.Route("/notes", func(r chi.Router) {
			r.With(optionalAuth).Get("/", errs.Wrap(h.ListNotes))
			r.With(optionalAuth).Post("/", errs.Wrap(h.CreateNote))
			r.With(optionalAuth).Get("/{id}", errs.Wrap(h.GetNote))
			r.With(optionalAuth).Put("/{id}", errs.Wrap(h.UpdateNote))
			r.With(optionalAuth).Delete("/{id}", errs.Wrap(h.DeleteNote))
		})
	})
}
