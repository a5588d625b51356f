package vitals

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/myautoimport/site-api/pkg/logging"
)

// Handler exposes the vitals check over HTTP so a scheduler can hit it.
type Handler struct {
	checker *Checker
	logger  *logging.Logger
}

// NewHandler creates the vitals handler.
func NewHandler(checker *Checker, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{checker: checker, logger: logger}
}

// Check handles GET /api/vitals-check.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "server_misconfigured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 45*time.Second)
	defer cancel()

	report, err := h.checker.Run(ctx)
	if err != nil {
		h.logger.Error("vitals check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"site":   report.Site,
		"lcp":    report.LCP,
		"inp":    report.INP,
		"cls":    report.CLS,
		"alerts": report.Alerts,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
