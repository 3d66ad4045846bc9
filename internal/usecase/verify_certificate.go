package usecase

import (
	"context"
	"log"
	"time"

	"certledger/internal/domain"
	"certledger/internal/infra/crypto"

	"github.com/google/uuid"
)

type VerifyResult struct {
	Classification domain.Classification
	Certificate    *domain.Certificate
	// ChainChecked is true when the verdict came from the ledger cross-check
	// rather than the local fallback comparison.
	ChainChecked bool
}

// VerifyCertificate classifies a lookup into exactly one of verified,
// tampered, revoked, expired or not_found. It never surfaces infrastructure
// errors: a ledger outage degrades to comparing the recomputed hash against
// the record's own stored hash, and a broken store reads as not_found.
type VerifyCertificate struct {
	Certs  CertificateRepository
	Logs   VerificationLogRepository
	Ledger domain.Ledger
	Crypto HashService
	Policy ExpiryPolicy

	LedgerTimeout time.Duration
	Now           func() time.Time
}

func (uc *VerifyCertificate) Execute(ctx context.Context, certificateID, clientIP string) VerifyResult {
	now := uc.Now
	if now == nil {
		now = time.Now
	}

	cert, err := uc.Certs.GetByCertificateID(ctx, certificateID)
	if err != nil {
		return uc.finish(ctx, certificateID, clientIP, now, VerifyResult{Classification: domain.ClassificationNotFound})
	}

	// Revocation short-circuits everything, including the hash comparison.
	if cert.IsRevoked {
		return uc.finish(ctx, certificateID, clientIP, now, VerifyResult{
			Classification: domain.ClassificationRevoked,
			Certificate:    &cert,
		})
	}

	recomputed := uc.Crypto.ContentHash(cert)
	result := uc.classify(ctx, cert, recomputed)
	result.Certificate = &cert

	if result.Classification == domain.ClassificationVerified && uc.expired(ctx, cert, now()) {
		result.Classification = domain.ClassificationExpired
	}
	return uc.finish(ctx, certificateID, clientIP, now, result)
}

func (uc *VerifyCertificate) classify(ctx context.Context, cert domain.Certificate, recomputed string) VerifyResult {
	if uc.Ledger != nil {
		timeout := uc.LedgerTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ledgerCtx, cancel := context.WithTimeout(ctx, timeout)
		rec, err := uc.Ledger.VerifyCertificate(ledgerCtx, cert.CertificateID)
		cancel()
		if err == nil {
			switch {
			case !rec.IsValid:
				return VerifyResult{Classification: domain.ClassificationNotFound, ChainChecked: true}
			case rec.IsRevoked:
				return VerifyResult{Classification: domain.ClassificationRevoked, ChainChecked: true}
			case !crypto.EqualHex(rec.Hash, recomputed):
				return VerifyResult{Classification: domain.ClassificationTampered, ChainChecked: true}
			default:
				return VerifyResult{Classification: domain.ClassificationVerified, ChainChecked: true}
			}
		}
		log.Printf("ledger verify failed for %s, falling back to local comparison: %v", cert.CertificateID, err)
	}

	// Fallback path: availability over ledger-grade tamper evidence. A store
	// that can forge both the fields and the stored hash defeats this check.
	if crypto.EqualHex(recomputed, cert.ContentHash) {
		return VerifyResult{Classification: domain.ClassificationVerified}
	}
	return VerifyResult{Classification: domain.ClassificationTampered}
}

func (uc *VerifyCertificate) expired(ctx context.Context, cert domain.Certificate, now time.Time) bool {
	if uc.Policy != nil {
		expired, err := uc.Policy.Expired(ctx, cert, now)
		if err != nil {
			log.Printf("expiry policy failed for %s: %v", cert.CertificateID, err)
			return expiredByDate(cert, now)
		}
		return expired
	}
	return expiredByDate(cert, now)
}

func expiredByDate(cert domain.Certificate, now time.Time) bool {
	if cert.ExpiryDate == "" {
		return false
	}
	expiry, err := time.Parse("2006-01-02", cert.ExpiryDate)
	if err != nil {
		return false
	}
	// Valid through the whole expiry day.
	return now.After(expiry.AddDate(0, 0, 1))
}

// finish writes the audit entry and returns the result unchanged. Logging is
// fire and forget: a failed write never alters the classification.
func (uc *VerifyCertificate) finish(ctx context.Context, certificateID, clientIP string, now func() time.Time, result VerifyResult) VerifyResult {
	if uc.Logs == nil {
		return result
	}
	entry := domain.VerificationLog{
		ID:            uuid.NewString(),
		CertificateID: certificateID,
		Result:        result.Classification,
		IPAddress:     clientIP,
		Timestamp:     now().UTC(),
	}
	if err := uc.Logs.Append(ctx, entry); err != nil {
		log.Printf("verification log write failed for %s: %v", certificateID, err)
	}
	return result
}
