package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/respond"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleHealth: GET /healthz → 200 {"status":"ok"}, or 503 when the
// database does not answer within two seconds.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respond.Error(w, r, apperror.Unavailable("db"))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
