package crypto

import (
	"strings"

	"certledger/internal/domain"
)

type Service struct {
	digester Digester
}

func NewService(digester Digester) *Service {
	if digester == nil {
		digester = SHA256Digester{}
	}
	return &Service{digester: digester}
}

// ContentHash returns the digest of the certificate's canonical string.
func (s *Service) ContentHash(c domain.Certificate) string {
	return s.digester.Digest([]byte(Canonical(c)))
}

// EqualHex compares two hex digests, tolerating a 0x prefix and mixed case.
// The ledger returns 0x-prefixed hashes; local digests are bare lowercase.
func EqualHex(a, b string) bool {
	a = strings.TrimPrefix(strings.TrimPrefix(a, "0x"), "0X")
	b = strings.TrimPrefix(strings.TrimPrefix(b, "0x"), "0X")
	return strings.EqualFold(a, b)
}
