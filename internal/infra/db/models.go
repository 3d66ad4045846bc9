package db

import "time"

type CertificateModel struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	CertificateID string `gorm:"column:certificate_id;uniqueIndex;not null"`

	RecipientName   string `gorm:"not null"`
	CourseName      string `gorm:"not null"`
	InstitutionName string `gorm:"not null"`
	IssuerName      string `gorm:"not null"`
	InstructorName  string
	IssueDate       string `gorm:"not null"`
	ExpiryDate      string
	DurationFrom    string
	DurationTo      string
	Grade           string

	ContentHash string `gorm:"not null"`
	ChainTxRef  string

	IsRevoked  bool `gorm:"not null"`
	RevokedAt  *time.Time
	RevokedBy  string
	RestoredAt *time.Time
	RestoredBy string

	Template          string `gorm:"not null"`
	LogoURL           string
	SignatureURL      string
	QRPosition        string `gorm:"column:qr_position"`
	LogoPosition      string
	SignaturePosition string

	CreatedAt time.Time `gorm:"index;not null"`
}

func (CertificateModel) TableName() string {
	return "certificates"
}

type VerificationLogModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	CertificateID string    `gorm:"column:certificate_id;index;not null"`
	Result        string    `gorm:"not null"`
	IPAddress     string    `gorm:"column:ip_address"`
	Timestamp     time.Time `gorm:"index;not null"`
}

func (VerificationLogModel) TableName() string {
	return "verifications"
}
