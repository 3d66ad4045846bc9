package usecase

import (
	"context"
	"errors"
	"testing"

	"certledger/internal/domain"
)

func TestStatsAggregates(t *testing.T) {
	repo := newStubCertRepo()
	repo.byID["a"] = domain.Certificate{ID: "a"}
	repo.byID["b"] = domain.Certificate{ID: "b"}
	repo.txRefs["a"] = "0x1"
	logs := &stubLogRepo{entries: []domain.VerificationLog{{}, {}, {}}}
	ledger := &stubLedger{count: 7}

	q := &StatsQuery{Certs: repo, Logs: logs, Ledger: ledger}
	stats, err := q.Execute(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalIssued != 2 || stats.Anchored != 1 || stats.RecentVerifications != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if !stats.LedgerReachable || stats.OnChainCount != 7 {
		t.Fatalf("ledger cross-read missing: %+v", stats)
	}
}

func TestStatsLedgerOutageIsNonFatal(t *testing.T) {
	repo := newStubCertRepo()
	ledger := &stubLedger{countErr: errors.New("rpc down")}

	q := &StatsQuery{Certs: repo, Logs: &stubLogRepo{}, Ledger: ledger}
	stats, err := q.Execute(context.Background())
	if err != nil {
		t.Fatalf("stats must not fail on ledger outage: %v", err)
	}
	if stats.LedgerReachable {
		t.Fatalf("ledger must be flagged unreachable")
	}
}
