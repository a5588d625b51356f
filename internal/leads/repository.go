package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/myautoimport/site-api/pkg/logging"
)

// Repository defines the interface for lead storage. Insert persists the
// record and returns the store-generated identifier. Implementations must
// never report success without an id.
type Repository interface {
	Insert(ctx context.Context, lead *Lead) (string, error)
}

// FallbackRepository tries a primary access path and, on any failure,
// exactly one fallback path against the same backing store.
type FallbackRepository struct {
	primary    Repository
	fallback   Repository
	logger     *logging.Logger
	onFallback func()
}

// NewFallbackRepository composes primary and fallback insert paths.
// fallback may be nil, in which case only the primary is tried.
func NewFallbackRepository(primary, fallback Repository, logger *logging.Logger) *FallbackRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackRepository{primary: primary, fallback: fallback, logger: logger}
}

// OnFallback registers a hook invoked whenever the fallback path is used.
func (r *FallbackRepository) OnFallback(fn func()) {
	r.onFallback = fn
}

// Insert tries the primary path first, then the fallback.
func (r *FallbackRepository) Insert(ctx context.Context, lead *Lead) (string, error) {
	id, err := r.primary.Insert(ctx, lead)
	if err == nil {
		return id, nil
	}
	if r.fallback == nil {
		return "", err
	}

	r.logger.Warn("primary lead insert failed, trying fallback", "error", err)
	if r.onFallback != nil {
		r.onFallback()
	}
	return r.fallback.Insert(ctx, lead)
}

// InMemoryRepository is a stub implementation of Repository using in-memory
// storage, for tests and local development without a database.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Insert stores the lead in memory under a generated id.
func (r *InMemoryRepository) Insert(ctx context.Context, lead *Lead) (string, error) {
	stored := *lead
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	r.leads[stored.ID] = &stored
	r.mu.Unlock()

	return stored.ID, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}

	return lead, nil
}
