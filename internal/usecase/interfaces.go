package usecase

import (
	"context"
	"time"

	"certledger/internal/domain"
)

// CertificateRepository is the "certificates" collection.
type CertificateRepository interface {
	// Create persists a new record. Returns domain.ErrDuplicateID when the
	// public certificate id is already taken.
	Create(ctx context.Context, cert domain.Certificate) error
	GetByCertificateID(ctx context.Context, certificateID string) (domain.Certificate, error)
	GetByID(ctx context.Context, id string) (domain.Certificate, error)
	// List returns records newest first.
	List(ctx context.Context) ([]domain.Certificate, error)
	// SetChainTxRef records the anchoring transaction after the fact.
	SetChainTxRef(ctx context.Context, id, txRef string) error
	CountAll(ctx context.Context) (int64, error)
	CountRevoked(ctx context.Context) (int64, error)
	CountAnchored(ctx context.Context) (int64, error)
}

// RevocationRepository covers the only post-creation mutations a certificate
// record sees.
type RevocationRepository interface {
	Revoke(ctx context.Context, id string, at time.Time, by string) error
	Restore(ctx context.Context, id string, at time.Time, by string) error
}

// VerificationLogRepository is the append-only "verifications" collection.
type VerificationLogRepository interface {
	Append(ctx context.Context, entry domain.VerificationLog) error
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// BlobStore holds logo/signature images and returns retrievable URLs.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
}

// HashService recomputes a certificate's content hash from its semantic
// fields.
type HashService interface {
	ContentHash(cert domain.Certificate) string
}

// Renderer produces the printable artifact. It never mutates stored state.
type Renderer interface {
	Render(cert domain.Certificate) ([]byte, error)
}

// ExpiryPolicy decides whether an otherwise-verified certificate should
// classify as expired. When nil, the verification engine falls back to a
// plain expiry-date comparison.
type ExpiryPolicy interface {
	Expired(ctx context.Context, cert domain.Certificate, now time.Time) (bool, error)
}
