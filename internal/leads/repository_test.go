package leads

import (
	"context"
	"errors"
	"testing"
)

func TestFallbackRepositoryPrimaryWins(t *testing.T) {
	primary := &spyRepository{id: "primary-id"}
	fallback := &spyRepository{id: "fallback-id"}
	repo := NewFallbackRepository(primary, fallback, nil)

	id, err := repo.Insert(context.Background(), validRequest().Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "primary-id" {
		t.Fatalf("expected primary id, got %q", id)
	}
	if len(fallback.inserts) != 0 {
		t.Fatal("fallback must not be tried when primary succeeds")
	}
}

func TestFallbackRepositoryUsesFallbackOnce(t *testing.T) {
	primary := &spyRepository{err: errors.New("boom")}
	fallback := &spyRepository{id: "fallback-id"}
	repo := NewFallbackRepository(primary, fallback, nil)

	var hookCalls int
	repo.OnFallback(func() { hookCalls++ })

	id, err := repo.Insert(context.Background(), validRequest().Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "fallback-id" {
		t.Fatalf("expected fallback id, got %q", id)
	}
	if hookCalls != 1 {
		t.Fatalf("expected fallback hook once, got %d", hookCalls)
	}
}

func TestFallbackRepositoryNoFallbackConfigured(t *testing.T) {
	primaryErr := errors.New("boom")
	repo := NewFallbackRepository(&spyRepository{err: primaryErr}, nil, nil)

	_, err := repo.Insert(context.Background(), validRequest().Normalize())
	if !errors.Is(err, primaryErr) {
		t.Fatalf("expected primary error surfaced, got %v", err)
	}
}

func TestInMemoryRepositoryInsertAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	lead := validRequest().Normalize()
	id, err := repo.Insert(ctx, lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	found, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Email != lead.Email {
		t.Fatalf("expected stored email %q, got %q", lead.Email, found.Email)
	}
	if found.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	if _, err := repo.GetByID(ctx, "nonexistent"); err != ErrLeadNotFound {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}
