package usecase

import (
	"context"
	"log"
	"time"

	"certledger/internal/domain"
)

type DashboardStats struct {
	TotalIssued         int64
	Anchored            int64
	Revoked             int64
	RecentVerifications int64
	OnChainCount        int64
	LedgerReachable     bool
}

// StatsQuery aggregates the admin dashboard counters. The on-chain count is a
// best-effort cross-read; an unreachable ledger just flags LedgerReachable
// false instead of failing the query.
type StatsQuery struct {
	Certs  CertificateRepository
	Logs   VerificationLogRepository
	Ledger domain.Ledger

	LedgerTimeout time.Duration
	Now           func() time.Time
}

func (q *StatsQuery) Execute(ctx context.Context) (DashboardStats, error) {
	now := q.Now
	if now == nil {
		now = time.Now
	}
	var stats DashboardStats
	var err error
	if stats.TotalIssued, err = q.Certs.CountAll(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.Revoked, err = q.Certs.CountRevoked(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.Anchored, err = q.Certs.CountAnchored(ctx); err != nil {
		return DashboardStats{}, err
	}
	if q.Logs != nil {
		if stats.RecentVerifications, err = q.Logs.CountSince(ctx, now().Add(-24*time.Hour)); err != nil {
			return DashboardStats{}, err
		}
	}
	if q.Ledger != nil {
		timeout := q.LedgerTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ledgerCtx, cancel := context.WithTimeout(ctx, timeout)
		count, err := q.Ledger.GetCertificateCount(ledgerCtx)
		cancel()
		if err != nil {
			log.Printf("ledger count failed: %v", err)
		} else {
			stats.OnChainCount = count
			stats.LedgerReachable = true
		}
	}
	return stats, nil
}
