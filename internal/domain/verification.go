package domain

import "time"

// Classification is the single outcome of a verification request.
type Classification string

const (
	ClassificationVerified Classification = "verified"
	ClassificationTampered Classification = "tampered"
	ClassificationRevoked  Classification = "revoked"
	ClassificationExpired  Classification = "expired"
	ClassificationNotFound Classification = "not_found"
)

// VerificationLog is an append-only audit record, written on every lookup
// attempt including failed ones. Never mutated or deleted.
type VerificationLog struct {
	ID            string
	CertificateID string
	Result        Classification
	IPAddress     string
	Timestamp     time.Time
}
