package crypto

import (
	"strings"

	"certledger/internal/domain"
)

// Canonical builds the hash input for a certificate: the six semantic fields
// joined by '|' in fixed order. No trimming or case folding is applied;
// callers supply already-normalized values. Changing this order or the
// delimiter invalidates every previously anchored hash.
func Canonical(c domain.Certificate) string {
	return strings.Join([]string{
		c.CertificateID,
		c.RecipientName,
		c.CourseName,
		c.InstitutionName,
		c.IssuerName,
		c.IssueDate,
	}, "|")
}
