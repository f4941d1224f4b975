package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"notes-api/middleware"
)

func Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("<h1>Hello World!</h1>"))
}

type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// Health reports whether the store answers a ping.
func Health(p Pinger) middleware.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("store ping: %w", err)
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return nil
	}
}
