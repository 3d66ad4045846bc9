package db

import (
	"context"
	"time"

	"certledger/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationLogRepository is append-only: entries are never updated or
// deleted.
type VerificationLogRepository struct {
	db *gorm.DB
}

func NewVerificationLogRepository(db *gorm.DB) *VerificationLogRepository {
	return &VerificationLogRepository{db: db}
}

func (r *VerificationLogRepository) Append(ctx context.Context, entry domain.VerificationLog) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := VerificationLogModel{
		ID:            entry.ID,
		CertificateID: entry.CertificateID,
		Result:        string(entry.Result),
		IPAddress:     entry.IPAddress,
		Timestamp:     entry.Timestamp,
	}
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *VerificationLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&VerificationLogModel{}).
		Where("timestamp >= ?", since).
		Count(&n).Error
	return n, err
}
