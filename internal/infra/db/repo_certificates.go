package db

import (
	"context"
	"errors"
	"time"

	"certledger/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

func (r *CertificateRepository) Create(ctx context.Context, cert domain.Certificate) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := modelFromCertificate(cert)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Create(&model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateID
	}
	return err
}

func (r *CertificateRepository) GetByCertificateID(ctx context.Context, certificateID string) (domain.Certificate, error) {
	if r.db == nil {
		return domain.Certificate{}, errDBUnavailable
	}
	var model CertificateModel
	err := r.db.WithContext(ctx).
		Where("certificate_id = ?", certificateID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Certificate{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Certificate{}, err
	}
	return certificateFromModel(model), nil
}

func (r *CertificateRepository) GetByID(ctx context.Context, id string) (domain.Certificate, error) {
	if r.db == nil {
		return domain.Certificate{}, errDBUnavailable
	}
	var model CertificateModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Certificate{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Certificate{}, err
	}
	return certificateFromModel(model), nil
}

func (r *CertificateRepository) List(ctx context.Context) ([]domain.Certificate, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []CertificateModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	certs := make([]domain.Certificate, 0, len(models))
	for _, model := range models {
		certs = append(certs, certificateFromModel(model))
	}
	return certs, nil
}

func (r *CertificateRepository) SetChainTxRef(ctx context.Context, id, txRef string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&CertificateModel{}).
		Where("id = ?", id).
		Update("chain_tx_ref", txRef)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Revoke re-stamps on repeat calls rather than guarding against them; the
// record keeps only the latest provenance.
func (r *CertificateRepository) Revoke(ctx context.Context, id string, at time.Time, by string) error {
	return r.updateRevocation(ctx, id, map[string]any{
		"is_revoked": true,
		"revoked_at": at,
		"revoked_by": by,
	})
}

func (r *CertificateRepository) Restore(ctx context.Context, id string, at time.Time, by string) error {
	return r.updateRevocation(ctx, id, map[string]any{
		"is_revoked":  false,
		"revoked_at":  nil,
		"revoked_by":  "",
		"restored_at": at,
		"restored_by": by,
	})
}

func (r *CertificateRepository) updateRevocation(ctx context.Context, id string, fields map[string]any) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&CertificateModel{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CertificateRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, nil)
}

func (r *CertificateRepository) CountRevoked(ctx context.Context) (int64, error) {
	return r.count(ctx, map[string]any{"is_revoked": true})
}

func (r *CertificateRepository) CountAnchored(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&CertificateModel{}).
		Where("chain_tx_ref <> ''").
		Count(&n).Error
	return n, err
}

func (r *CertificateRepository) count(ctx context.Context, where map[string]any) (int64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Model(&CertificateModel{})
	if where != nil {
		query = query.Where(where)
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}

func modelFromCertificate(cert domain.Certificate) CertificateModel {
	return CertificateModel{
		ID:                cert.ID,
		CertificateID:     cert.CertificateID,
		RecipientName:     cert.RecipientName,
		CourseName:        cert.CourseName,
		InstitutionName:   cert.InstitutionName,
		IssuerName:        cert.IssuerName,
		InstructorName:    cert.InstructorName,
		IssueDate:         cert.IssueDate,
		ExpiryDate:        cert.ExpiryDate,
		DurationFrom:      cert.DurationFrom,
		DurationTo:        cert.DurationTo,
		Grade:             cert.Grade,
		ContentHash:       cert.ContentHash,
		ChainTxRef:        cert.ChainTxRef,
		IsRevoked:         cert.IsRevoked,
		RevokedAt:         cert.RevokedAt,
		RevokedBy:         cert.RevokedBy,
		RestoredAt:        cert.RestoredAt,
		RestoredBy:        cert.RestoredBy,
		Template:          cert.Template,
		LogoURL:           cert.LogoURL,
		SignatureURL:      cert.SignatureURL,
		QRPosition:        cert.QRPosition,
		LogoPosition:      cert.LogoPosition,
		SignaturePosition: cert.SignaturePosition,
		CreatedAt:         cert.CreatedAt,
	}
}

func certificateFromModel(model CertificateModel) domain.Certificate {
	return domain.Certificate{
		ID:                model.ID,
		CertificateID:     model.CertificateID,
		RecipientName:     model.RecipientName,
		CourseName:        model.CourseName,
		InstitutionName:   model.InstitutionName,
		IssuerName:        model.IssuerName,
		InstructorName:    model.InstructorName,
		IssueDate:         model.IssueDate,
		ExpiryDate:        model.ExpiryDate,
		DurationFrom:      model.DurationFrom,
		DurationTo:        model.DurationTo,
		Grade:             model.Grade,
		ContentHash:       model.ContentHash,
		ChainTxRef:        model.ChainTxRef,
		IsRevoked:         model.IsRevoked,
		RevokedAt:         model.RevokedAt,
		RevokedBy:         model.RevokedBy,
		RestoredAt:        model.RestoredAt,
		RestoredBy:        model.RestoredBy,
		Template:          model.Template,
		LogoURL:           model.LogoURL,
		SignatureURL:      model.SignatureURL,
		QRPosition:        model.QRPosition,
		LogoPosition:      model.LogoPosition,
		SignaturePosition: model.SignaturePosition,
		CreatedAt:         model.CreatedAt,
	}
}
