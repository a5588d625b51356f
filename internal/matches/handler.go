package matches

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/myautoimport/site-api/internal/catalog"
	"github.com/myautoimport/site-api/pkg/logging"
)

// Handler exposes the match notifier over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the matches handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type notifyRequest struct {
	CarID string `json:"car_id"`
}

// NotifyMatches handles POST /api/notify-matches.
func (h *Handler) NotifyMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CarID == "" {
		writeError(w, http.StatusBadRequest, "missing_car_id")
		return
	}

	if h.service == nil {
		writeError(w, http.StatusInternalServerError, "server_misconfigured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	sent, err := h.service.NotifyForCar(ctx, req.CarID)
	if err != nil {
		if errors.Is(err, catalog.ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "car_not_found")
			return
		}
		h.logger.Error("match pass failed", "error", err, "car_id", req.CarID)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "sent": sent})
}

func writeError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": kind})
}
