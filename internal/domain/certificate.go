package domain

import (
	"fmt"
	"time"
)

const (
	TemplateAcademic  = "academic"
	TemplateCorporate = "corporate"
	TemplatePremium   = "premium"
	TemplateMinimal   = "minimal"
)

const (
	defaultTemplate          = TemplateAcademic
	defaultQRPosition        = "bottom-right"
	defaultLogoPosition      = "top-center"
	defaultSignaturePosition = "bottom-center"
)

// Certificate is the anchored unit of truth. CertificateID is the external
// lookup key; ID is the storage primary key. ContentHash is computed once at
// issuance from the six semantic fields (certificate id, recipient, course,
// institution, issuer, issue date) and never recomputed in place. Instructor,
// expiry, duration and grade are stored but deliberately excluded from the
// hash input: they can change without invalidating the anchor.
type Certificate struct {
	ID            string
	CertificateID string

	RecipientName   string
	CourseName      string
	InstitutionName string
	IssuerName      string
	InstructorName  string
	IssueDate       string
	ExpiryDate      string
	DurationFrom    string
	DurationTo      string
	Grade           string

	ContentHash string
	ChainTxRef  string

	IsRevoked  bool
	RevokedAt  *time.Time
	RevokedBy  string
	RestoredAt *time.Time
	RestoredBy string

	Template          string
	LogoURL           string
	SignatureURL      string
	QRPosition        string
	LogoPosition      string
	SignaturePosition string

	CreatedAt time.Time
}

// CertificateIntake carries everything a caller supplies to issue a
// certificate. Defaults are applied exactly once, here, rather than at the
// individual call sites.
type CertificateIntake struct {
	RecipientName   string
	CourseName      string
	InstitutionName string
	IssuerName      string
	InstructorName  string
	IssueDate       string
	ExpiryDate      string
	DurationFrom    string
	DurationTo      string
	Grade           string

	Template          string
	QRPosition        string
	LogoPosition      string
	SignaturePosition string

	LogoBytes      []byte
	SignatureBytes []byte
}

func (in *CertificateIntake) ApplyDefaults() {
	if in.Template == "" {
		in.Template = defaultTemplate
	}
	if in.QRPosition == "" {
		in.QRPosition = defaultQRPosition
	}
	if in.LogoPosition == "" {
		in.LogoPosition = defaultLogoPosition
	}
	if in.SignaturePosition == "" {
		in.SignaturePosition = defaultSignaturePosition
	}
	if in.IssueDate == "" {
		in.IssueDate = time.Now().UTC().Format("2006-01-02")
	}
}

func (in CertificateIntake) Validate() error {
	if in.RecipientName == "" {
		return fmt.Errorf("%w: recipient_name is required", ErrInvalidIntake)
	}
	if in.CourseName == "" {
		return fmt.Errorf("%w: course_name is required", ErrInvalidIntake)
	}
	if in.InstitutionName == "" {
		return fmt.Errorf("%w: institution_name is required", ErrInvalidIntake)
	}
	if in.IssuerName == "" {
		return fmt.Errorf("%w: issuer_name is required", ErrInvalidIntake)
	}
	if _, err := time.Parse("2006-01-02", in.IssueDate); err != nil {
		return fmt.Errorf("%w: issue_date must be YYYY-MM-DD", ErrInvalidIntake)
	}
	if in.ExpiryDate != "" {
		if _, err := time.Parse("2006-01-02", in.ExpiryDate); err != nil {
			return fmt.Errorf("%w: expiry_date must be YYYY-MM-DD", ErrInvalidIntake)
		}
	}
	switch in.Template {
	case TemplateAcademic, TemplateCorporate, TemplatePremium, TemplateMinimal:
	default:
		return fmt.Errorf("%w: unknown template %q", ErrInvalidIntake, in.Template)
	}
	return nil
}
