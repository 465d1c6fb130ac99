package http

import (
	"context"
	"net/http"
	"time"

	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
)

const healthTimeout = 2 * time.Second

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger logger.Logger
}

func NewHealthHandler(db Pinger, logger logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// healthz
//
//	@Summary	Проверка доступности сервиса
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	Response	"Database unavailable"
//	@Router		/healthz [get]
func (h *HealthHandler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warnf("health check failed: %v", err)
		WriteError(w, e.Wrap(err.Error(), e.ErrDatabaseUnavailable))
		return
	}

	WriteSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
}
