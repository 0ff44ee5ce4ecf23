package http

import (
	"errors"
	"net/http"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/app/sweeper"
	"github.com/YelzhanWeb/canteen/internal/interfaces"

	"github.com/go-chi/chi/v5"
)

type SweeperHandler struct {
	service interfaces.SweeperService
	logger  logger.Logger
}

func NewSweeperHandler(service interfaces.SweeperService, logger logger.Logger) *SweeperHandler {
	return &SweeperHandler{service: service, logger: logger}
}

func (h *SweeperHandler) Register(r chi.Router) {
	r.Post("/sweeper/start", h.Start)
	r.Post("/sweeper/stop", h.Stop)
	r.Get("/sweeper/status", h.Status)
}

type sweeperStatusResponse struct {
	Running   bool                     `json:"running"`
	Interval  string                   `json:"interval"`
	LastSweep *interfaces.SweepSummary `json:"last_sweep,omitempty"`
}

func (h *SweeperHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Start(r.Context()); err != nil {
		if errors.Is(err, sweeper.ErrAlreadyRunning) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
			return
		}
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Sweeper started", nil)
}

func (h *SweeperHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Stop(r.Context()); err != nil {
		if errors.Is(err, sweeper.ErrNotRunning) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
			return
		}
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Sweeper stopped", nil)
}

func (h *SweeperHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status()
	respondData(w, http.StatusOK, "", sweeperStatusResponse{
		Running:   status.Running,
		Interval:  status.Interval.String(),
		LastSweep: status.LastSweep,
	})
}
