package main

import (
	"net/http"

	"notes-api/handlers"
	"notes-api/metrics"
	appmw "notes-api/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func newRouter(h *handlers.Handler, store handlers.Pinger, m *metrics.Metrics, log *logrus.Entry) *chi.Mux {
	errs := appmw.NewErrorHandler(log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appmw.RequestLogger(log))
	r.Use(m.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(appmw.CORS)

	r.NotFound(appmw.UnknownEndpoint)
	r.MethodNotAllowed(appmw.UnknownEndpoint)

	r.Get("/", handlers.Home)
	r.Get("/healthz", errs.Wrap(handlers.Health(store)))
	r.Method(http.MethodGet, "/metrics", m.Handler())

	h.Routes(r, errs)
	return r
}
