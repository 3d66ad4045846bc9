// Package memledger is an in-process ledger used when no gateway is
// configured and in tests. It mimics the contract's semantics: one anchor per
// certificate id, revocation flips a flag, nothing is ever deleted.
package memledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"certledger/internal/domain"
)

type entry struct {
	hash      string
	revoked   bool
	timestamp int64
}

type Ledger struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Ledger {
	return &Ledger{entries: make(map[string]entry), now: time.Now}
}

func NewWithClock(now func() time.Time) *Ledger {
	l := New()
	if now != nil {
		l.now = now
	}
	return l
}

func (l *Ledger) IssueCertificate(ctx context.Context, certificateID, contentHash string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.entries[certificateID]; exists {
		return "", fmt.Errorf("certificate %s already anchored", certificateID)
	}
	ts := l.now().Unix()
	l.entries[certificateID] = entry{hash: withHexPrefix(contentHash), timestamp: ts}
	return fmt.Sprintf("0xmem%s%d", strings.ToLower(certificateID), ts), nil
}

func (l *Ledger) VerifyCertificate(ctx context.Context, certificateID string) (domain.LedgerRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[certificateID]
	if !ok {
		return domain.LedgerRecord{IsValid: false}, nil
	}
	return domain.LedgerRecord{
		Hash:      e.hash,
		IsValid:   true,
		IsRevoked: e.revoked,
		Timestamp: e.timestamp,
	}, nil
}

func (l *Ledger) RevokeCertificate(ctx context.Context, certificateID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[certificateID]
	if !ok {
		return "", fmt.Errorf("certificate %s not anchored", certificateID)
	}
	e.revoked = true
	l.entries[certificateID] = e
	return fmt.Sprintf("0xmemrevoke%s", strings.ToLower(certificateID)), nil
}

func (l *Ledger) GetCertificateCount(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int64(len(l.entries)), nil
}

func withHexPrefix(hash string) string {
	if strings.HasPrefix(hash, "0x") || strings.HasPrefix(hash, "0X") {
		return hash
	}
	return "0x" + hash
}
