package domain

import "context"

// LedgerRecord is what the smart-contract ledger returns for a certificate
// id. Hash is 0x-prefixed hex as returned by the chain; local hashes are
// unprefixed lowercase, so comparisons must normalize both.
type LedgerRecord struct {
	Hash      string
	IsValid   bool
	IsRevoked bool
	Timestamp int64
}

// Ledger is the smart-contract surface, consumed but not specified here.
// Callers are expected to bound each call with a context deadline; on-chain
// confirmation can take seconds.
type Ledger interface {
	// IssueCertificate anchors (certificateID, contentHash) and returns the
	// transaction hash once confirmed.
	IssueCertificate(ctx context.Context, certificateID, contentHash string) (string, error)
	// VerifyCertificate fetches the anchored record for the id.
	VerifyCertificate(ctx context.Context, certificateID string) (LedgerRecord, error)
	// RevokeCertificate marks the id revoked on chain. Exposed for contract
	// completeness; the revocation manager is record-store-only and does not
	// call it.
	RevokeCertificate(ctx context.Context, certificateID string) (string, error)
	// GetCertificateCount returns the number of anchored certificates.
	GetCertificateCount(ctx context.Context) (int64, error)
}
