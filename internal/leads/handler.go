package leads

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/myautoimport/site-api/internal/observability/metrics"
	"github.com/myautoimport/site-api/internal/ratelimit"
	"github.com/myautoimport/site-api/pkg/logging"
)

var tracer = otel.Tracer("github.com/myautoimport/site-api/internal/leads")

const rateLimitKeyPrefix = "lead_limit:"

// collaboratorTimeout bounds every outbound call made within one request.
const collaboratorTimeout = 8 * time.Second

// Handler runs the lead intake pipeline: method guard, parse/validate,
// rate limit, normalize, persist with fallback, best-effort notify.
//
// The rate-limit identity is the submitter's normalized email, which is why
// the body is parsed before the limiter runs; an invalid body therefore
// short-circuits without touching any collaborator.
type Handler struct {
	repo     Repository
	limiter  ratelimit.Limiter
	notifier *Notifier
	logger   *logging.Logger
	metrics  *metrics.LeadMetrics
}

// NewHandler creates the intake handler. repo may be nil when persistence is
// not configured; submissions then fail with server_misconfigured. limiter
// and notifier may be nil, those stages are skipped.
func NewHandler(repo Repository, limiter ratelimit.Limiter, notifier *Notifier, logger *logging.Logger, m *metrics.LeadMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:     repo,
		limiter:  limiter,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
	}
}

type submitResponse struct {
	OK        bool       `json:"ok"`
	ID        string     `json:"id"`
	Remaining *int       `json:"remaining,omitempty"`
	ResetAt   *time.Time `json:"resetAt,omitempty"`
}

type rateLimitedResponse struct {
	Error     string    `json:"error"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

// SubmitLead handles POST /api/leads. It always produces exactly one
// response; any fault escaping a stage is converted to 500 internal_error.
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("lead handler panic", "panic", rec)
			h.metrics.ObserveSubmission(KindInternalError)
			writeError(w, http.StatusInternalServerError, KindInternalError)
		}
	}()

	ctx, span := tracer.Start(r.Context(), "leads.submit")
	defer span.End()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, KindMethodNotAllowed)
		return
	}

	var req SubmitLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.ObserveSubmission(KindInvalidBody)
		writeError(w, http.StatusBadRequest, KindInvalidBody)
		return
	}

	if err := req.Validate(); err != nil {
		h.metrics.ObserveSubmission(err.Error())
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lead := req.Normalize()
	span.SetAttributes(attribute.Bool("lead.has_car_id", lead.CarID != nil))

	// Rate limit keyed by normalized email. A rejected submission is never
	// persisted and never notified.
	var decision ratelimit.Decision
	if h.limiter != nil {
		limitCtx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
		var err error
		decision, err = h.limiter.Allow(limitCtx, rateLimitKeyPrefix+lead.Email)
		cancel()
		if err != nil {
			// Limiter implementations fail open themselves; an error here is
			// unexpected but must not block the submission.
			h.logger.Error("rate limiter error, continuing", "error", err)
			decision = ratelimit.Decision{Allowed: true}
		}
		if !decision.Allowed {
			h.logger.Warn("lead submission rate limited", "email", lead.Email)
			h.metrics.ObserveRateLimited()
			writeJSON(w, http.StatusTooManyRequests, rateLimitedResponse{
				Error:     KindTooManyRequests,
				Limit:     decision.Limit,
				Remaining: decision.Remaining,
				ResetAt:   decision.ResetAt,
			})
			return
		}
	}

	if h.repo == nil {
		h.logger.Error("lead persistence not configured")
		h.metrics.ObserveSubmission(KindServerMisconfig)
		writeError(w, http.StatusInternalServerError, KindServerMisconfig)
		return
	}

	insertCtx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
	id, err := h.repo.Insert(insertCtx, lead)
	cancel()
	if err != nil {
		h.logger.Error("lead insert failed on all paths", "error", err)
		h.metrics.ObserveSubmission(KindDBInsertFailed)
		writeError(w, http.StatusInternalServerError, KindDBInsertFailed)
		return
	}

	// Notification is decoupled from the success path: the response below is
	// already determined, whatever happens in here is only logged.
	if h.notifier != nil {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), collaboratorTimeout)
		h.notifier.NotifyNewLead(notifyCtx, lead, id)
		cancel()
	}

	h.logger.Info("lead accepted", "id", id, "email", lead.Email)
	h.metrics.ObserveSubmission("accepted")

	resp := submitResponse{OK: true, ID: id}
	if h.limiter != nil {
		resp.Remaining = &decision.Remaining
		resp.ResetAt = &decision.ResetAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// TestRateLimit handles GET /api/test-ratelimit, consuming one unit against
// a throwaway key so operators can inspect the live decision.
func (h *Handler) TestRateLimit(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		email = "test@example.com"
	}
	email = normalizeEmail(email)

	if h.limiter == nil {
		writeError(w, http.StatusServiceUnavailable, "rate_limiter_disabled")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), collaboratorTimeout)
	defer cancel()

	decision, err := h.limiter.Allow(ctx, "test_limit:"+email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, KindInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"email":  email,
		"result": decision,
	})
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind string) {
	writeJSON(w, status, map[string]string{"error": kind})
}
