package usecase

import (
	"context"
	"errors"
	"time"

	"certledger/internal/domain"
)

// RevocationService flips a record's revoked state by storage id. Both
// operations are record-store-only: the ledger is treated as an immutable
// issuance log and is never written here. Revoking an already-revoked record
// simply re-stamps the provenance fields.
type RevocationService struct {
	Certs RevocationRepository
	Now   func() time.Time
}

func NewRevocationService(certs RevocationRepository) *RevocationService {
	return &RevocationService{Certs: certs}
}

func (s *RevocationService) Revoke(ctx context.Context, id, by string, confirmed bool) error {
	if s == nil || s.Certs == nil {
		return errors.New("revocation repository is required")
	}
	if !confirmed {
		return domain.ErrConfirmRequired
	}
	return s.Certs.Revoke(ctx, id, s.now(), by)
}

func (s *RevocationService) Restore(ctx context.Context, id, by string) error {
	if s == nil || s.Certs == nil {
		return errors.New("revocation repository is required")
	}
	return s.Certs.Restore(ctx, id, s.now(), by)
}

func (s *RevocationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
