package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"certledger/internal/domain"
)

type stubRevocationRepo struct {
	revokeCalls  int
	restoreCalls int
	lastAt       time.Time
	lastBy       string
	err          error
}

func (r *stubRevocationRepo) Revoke(ctx context.Context, id string, at time.Time, by string) error {
	r.revokeCalls++
	r.lastAt = at
	r.lastBy = by
	return r.err
}

func (r *stubRevocationRepo) Restore(ctx context.Context, id string, at time.Time, by string) error {
	r.restoreCalls++
	r.lastAt = at
	r.lastBy = by
	return r.err
}

func TestRevokeRequiresConfirmation(t *testing.T) {
	repo := &stubRevocationRepo{}
	svc := NewRevocationService(repo)

	err := svc.Revoke(context.Background(), "row-1", "admin@example.org", false)
	if !errors.Is(err, domain.ErrConfirmRequired) {
		t.Fatalf("expected confirmation error, got %v", err)
	}
	if repo.revokeCalls != 0 {
		t.Fatalf("store must not be touched without confirmation")
	}
}

func TestRevokeStampsProvenance(t *testing.T) {
	repo := &stubRevocationRepo{}
	svc := NewRevocationService(repo)
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return at }

	if err := svc.Revoke(context.Background(), "row-1", "admin@example.org", true); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if repo.revokeCalls != 1 || repo.lastBy != "admin@example.org" || !repo.lastAt.Equal(at) {
		t.Fatalf("provenance not stamped: %+v", repo)
	}
}

func TestDoubleRevokeJustRestamps(t *testing.T) {
	repo := &stubRevocationRepo{}
	svc := NewRevocationService(repo)

	for i := 0; i < 2; i++ {
		if err := svc.Revoke(context.Background(), "row-1", "admin", true); err != nil {
			t.Fatalf("revoke %d: %v", i, err)
		}
	}
	if repo.revokeCalls != 2 {
		t.Fatalf("expected two revoke writes, got %d", repo.revokeCalls)
	}
}

func TestRestore(t *testing.T) {
	repo := &stubRevocationRepo{}
	svc := NewRevocationService(repo)

	if err := svc.Restore(context.Background(), "row-1", "admin"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if repo.restoreCalls != 1 || repo.lastBy != "admin" {
		t.Fatalf("restore not recorded: %+v", repo)
	}
}
