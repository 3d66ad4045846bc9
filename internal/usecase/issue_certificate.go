package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"certledger/internal/domain"
	"certledger/pkg/certid"

	"github.com/google/uuid"
)

// Issuance phases, reported through the progress callback.
const (
	StepHash    = 1
	StepUpload  = 2
	StepPersist = 3
	StepAnchor  = 4
	StepRender  = 5
)

const maxIDAttempts = 3

type IssueRequest struct {
	Intake domain.CertificateIntake
	// Progress receives the current phase number before the phase runs.
	Progress func(step int)
}

type IssueResult struct {
	Certificate domain.Certificate
	PDF         []byte
	// Anchored is false when the ledger write failed or no ledger is
	// configured; the record is still valid and verifiable locally.
	Anchored bool
}

// IssueCertificate sequences hashing, asset upload, persistence, ledger
// anchoring and artifact rendering. Phases 1-3 are atomic from the caller's
// view: any failure there leaves no record behind. A phase 4 failure is
// swallowed (the record just lacks a chain reference). A phase 5 failure is
// returned, but by then the certificate already exists in storage.
type IssueCertificate struct {
	Certs    CertificateRepository
	Blobs    BlobStore
	Ledger   domain.Ledger
	Crypto   HashService
	Renderer Renderer

	LedgerTimeout time.Duration
	NewID         func() string
	Now           func() time.Time
}

func (uc *IssueCertificate) Execute(ctx context.Context, req IssueRequest) (IssueResult, error) {
	if uc.Certs == nil || uc.Crypto == nil {
		return IssueResult{}, errors.New("issue usecase is not fully wired")
	}
	progress := req.Progress
	if progress == nil {
		progress = func(int) {}
	}
	newID := uc.NewID
	if newID == nil {
		newID = certid.New
	}
	now := uc.Now
	if now == nil {
		now = time.Now
	}

	progress(StepHash)
	intake := req.Intake
	intake.ApplyDefaults()
	if err := intake.Validate(); err != nil {
		return IssueResult{}, err
	}
	cert := certificateFromIntake(intake)
	cert.ID = uuid.NewString()
	cert.CertificateID = newID()
	cert.CreatedAt = now().UTC()
	cert.ContentHash = uc.Crypto.ContentHash(cert)

	progress(StepUpload)
	if uc.Blobs == nil && (len(intake.LogoBytes) > 0 || len(intake.SignatureBytes) > 0) {
		// Dropping supplied assets silently would issue a certificate that
		// renders without its logo or signature forever.
		return IssueResult{}, errors.New("intake carries assets but no blob store is configured")
	}
	if uc.Blobs != nil && len(intake.LogoBytes) > 0 {
		url, err := uc.Blobs.Put(ctx, "logos/"+cert.CertificateID, intake.LogoBytes)
		if err != nil {
			return IssueResult{}, fmt.Errorf("upload logo: %w", err)
		}
		cert.LogoURL = url
	}
	if uc.Blobs != nil && len(intake.SignatureBytes) > 0 {
		url, err := uc.Blobs.Put(ctx, "signatures/"+cert.CertificateID, intake.SignatureBytes)
		if err != nil {
			return IssueResult{}, fmt.Errorf("upload signature: %w", err)
		}
		cert.SignatureURL = url
	}

	progress(StepPersist)
	if err := uc.persistWithRetry(ctx, &cert, newID); err != nil {
		return IssueResult{}, err
	}

	progress(StepAnchor)
	anchored := uc.anchor(ctx, &cert)

	progress(StepRender)
	result := IssueResult{Certificate: cert, Anchored: anchored}
	if uc.Renderer != nil {
		pdf, err := uc.Renderer.Render(cert)
		if err != nil {
			// The record is durable already; only this request's artifact is
			// lost and it can be re-rendered later.
			return result, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
		}
		result.PDF = pdf
	}
	return result, nil
}

// persistWithRetry regenerates the public id and content hash when the store
// reports a collision. The id embeds the hash input, so a new id always means
// a new hash.
func (uc *IssueCertificate) persistWithRetry(ctx context.Context, cert *domain.Certificate, newID func() string) error {
	for attempt := 0; ; attempt++ {
		err := uc.Certs.Create(ctx, *cert)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateID) || attempt+1 >= maxIDAttempts {
			return fmt.Errorf("persist certificate: %w", err)
		}
		cert.CertificateID = newID()
		cert.ContentHash = uc.Crypto.ContentHash(*cert)
	}
}

func (uc *IssueCertificate) anchor(ctx context.Context, cert *domain.Certificate) bool {
	if uc.Ledger == nil {
		return false
	}
	timeout := uc.LedgerTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	anchorCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	txRef, err := uc.Ledger.IssueCertificate(anchorCtx, cert.CertificateID, cert.ContentHash)
	if err != nil {
		log.Printf("ledger anchor failed for %s: %v", cert.CertificateID, err)
		return false
	}
	if err := uc.Certs.SetChainTxRef(ctx, cert.ID, txRef); err != nil {
		log.Printf("recording chain tx ref failed for %s: %v", cert.CertificateID, err)
	}
	cert.ChainTxRef = txRef
	return true
}

func certificateFromIntake(in domain.CertificateIntake) domain.Certificate {
	return domain.Certificate{
		RecipientName:     in.RecipientName,
		CourseName:        in.CourseName,
		InstitutionName:   in.InstitutionName,
		IssuerName:        in.IssuerName,
		InstructorName:    in.InstructorName,
		IssueDate:         in.IssueDate,
		ExpiryDate:        in.ExpiryDate,
		DurationFrom:      in.DurationFrom,
		DurationTo:        in.DurationTo,
		Grade:             in.Grade,
		Template:          in.Template,
		QRPosition:        in.QRPosition,
		LogoPosition:      in.LogoPosition,
		SignaturePosition: in.SignaturePosition,
	}
}
