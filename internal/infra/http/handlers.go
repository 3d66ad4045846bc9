package http

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"time"

	"certledger/internal/domain"
	"certledger/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type issueInput struct {
	RecipientName   string `json:"recipient_name"`
	CourseName      string `json:"course_name"`
	InstitutionName string `json:"institution_name"`
	IssuerName      string `json:"issuer_name"`
	InstructorName  string `json:"instructor_name,omitempty"`
	IssueDate       string `json:"issue_date,omitempty"`
	ExpiryDate      string `json:"expiry_date,omitempty"`
	DurationFrom    string `json:"duration_from,omitempty"`
	DurationTo      string `json:"duration_to,omitempty"`
	Grade           string `json:"grade,omitempty"`

	Template          string `json:"template,omitempty"`
	QRPosition        string `json:"qr_position,omitempty"`
	LogoPosition      string `json:"logo_position,omitempty"`
	SignaturePosition string `json:"signature_position,omitempty"`

	LogoBase64      string `json:"logo_base64,omitempty"`
	SignatureBase64 string `json:"signature_base64,omitempty"`
}

type certificateResponse struct {
	ID            string `json:"id"`
	CertificateID string `json:"certificate_id"`

	RecipientName   string `json:"recipient_name"`
	CourseName      string `json:"course_name"`
	InstitutionName string `json:"institution_name"`
	IssuerName      string `json:"issuer_name"`
	InstructorName  string `json:"instructor_name,omitempty"`
	IssueDate       string `json:"issue_date"`
	ExpiryDate      string `json:"expiry_date,omitempty"`
	DurationFrom    string `json:"duration_from,omitempty"`
	DurationTo      string `json:"duration_to,omitempty"`
	Grade           string `json:"grade,omitempty"`

	ContentHash string `json:"content_hash"`
	ChainTxRef  string `json:"chain_tx_ref,omitempty"`

	IsRevoked  bool   `json:"is_revoked"`
	RevokedAt  string `json:"revoked_at,omitempty"`
	RevokedBy  string `json:"revoked_by,omitempty"`
	RestoredAt string `json:"restored_at,omitempty"`
	RestoredBy string `json:"restored_by,omitempty"`

	Template          string `json:"template"`
	LogoURL           string `json:"logo_url,omitempty"`
	SignatureURL      string `json:"signature_url,omitempty"`
	QRPosition        string `json:"qr_position"`
	LogoPosition      string `json:"logo_position"`
	SignaturePosition string `json:"signature_position"`

	CreatedAt string `json:"created_at"`
}

type issueResponse struct {
	Certificate certificateResponse `json:"certificate"`
	Anchored    bool                `json:"anchored"`
	// StepsCompleted lists the issuance phases that ran, in order.
	StepsCompleted []int  `json:"steps_completed"`
	PDFBase64      string `json:"pdf_base64,omitempty"`
}

type verifyResponseBody struct {
	Status       domain.Classification `json:"status"`
	ChainChecked bool                  `json:"chain_checked"`
	Certificate  *certificateResponse  `json:"certificate,omitempty"`
}

type revokeInput struct {
	Confirm bool   `json:"confirm"`
	By      string `json:"by,omitempty"`
}

type restoreInput struct {
	By string `json:"by,omitempty"`
}

type statsResponse struct {
	TotalIssued         int64 `json:"total_issued"`
	Anchored            int64 `json:"anchored"`
	Revoked             int64 `json:"revoked"`
	RecentVerifications int64 `json:"recent_verifications"`
	OnChainCount        int64 `json:"on_chain_count"`
	LedgerReachable     bool  `json:"ledger_reachable"`
}

func (s *Server) handleIssue(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.issueUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "issuance is not configured")
		return
	}
	var input issueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid json body")
		return
	}
	intake, err := intakeFromInput(input)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var steps []int
	result, err := s.issueUC.Execute(c.Request.Context(), usecase.IssueRequest{
		Intake:   intake,
		Progress: func(step int) { steps = append(steps, step) },
	})
	if err != nil {
		if errors.Is(err, domain.ErrRenderFailed) {
			// The record is already stored; the id lets the caller re-render
			// through the pdf endpoint once rendering recovers.
			c.JSON(http.StatusInternalServerError, errorResponse{
				Code:    "RENDER_FAILED",
				Message: "certificate stored but artifact rendering failed",
				Details: map[string]any{"certificate_id": result.Certificate.CertificateID},
			})
			return
		}
		writeError(c, err)
		return
	}

	resp := issueResponse{
		Certificate:    buildCertificateResponse(result.Certificate),
		Anchored:       result.Anchored,
		StepsCompleted: steps,
	}
	if len(result.PDF) > 0 {
		resp.PDFBase64 = base64.StdEncoding.EncodeToString(result.PDF)
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleList(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.certs == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "storage is not configured")
		return
	}
	certs, err := s.certs.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]certificateResponse, 0, len(certs))
	for _, cert := range certs {
		out = append(out, buildCertificateResponse(cert))
	}
	c.JSON(http.StatusOK, gin.H{"certificates": out})
}

func (s *Server) handleGet(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	cert, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildCertificateResponse(cert))
}

func (s *Server) handlePDF(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.renderer == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "rendering is not configured")
		return
	}
	cert, ok := s.lookup(c)
	if !ok {
		return
	}
	pdf, err := s.renderer.Render(cert)
	if err != nil {
		writeErrorCode(c, http.StatusInternalServerError, "RENDER_FAILED", "could not render certificate")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+cert.CertificateID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) handleVerify(c *gin.Context) {
	if !s.enforceRateLimit(c) {
		return
	}
	if s.verifyUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "verification is not configured")
		return
	}
	result := s.verifyUC.Execute(c.Request.Context(), c.Param("certificate_id"), c.ClientIP())
	body := verifyResponseBody{
		Status:       result.Classification,
		ChainChecked: result.ChainChecked,
	}
	if result.Certificate != nil {
		resp := buildCertificateResponse(*result.Certificate)
		body.Certificate = &resp
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleRevoke(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.revocationSvc == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "revocation is not configured")
		return
	}
	var input revokeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid json body")
		return
	}
	cert, ok := s.lookup(c)
	if !ok {
		return
	}
	if err := s.revocationSvc.Revoke(c.Request.Context(), cert.ID, input.By, input.Confirm); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificate_id": cert.CertificateID, "revoked": true})
}

func (s *Server) handleRestore(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.revocationSvc == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "revocation is not configured")
		return
	}
	// An empty body is fine here; restore takes no mandatory fields.
	var input restoreInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid json body")
		return
	}
	cert, ok := s.lookup(c)
	if !ok {
		return
	}
	if err := s.revocationSvc.Restore(c.Request.Context(), cert.ID, input.By); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificate_id": cert.CertificateID, "revoked": false})
}

func (s *Server) handleStats(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.statsQ == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "stats are not configured")
		return
	}
	stats, err := s.statsQ.Execute(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		TotalIssued:         stats.TotalIssued,
		Anchored:            stats.Anchored,
		Revoked:             stats.Revoked,
		RecentVerifications: stats.RecentVerifications,
		OnChainCount:        stats.OnChainCount,
		LedgerReachable:     stats.LedgerReachable,
	})
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func (s *Server) lookup(c *gin.Context) (domain.Certificate, bool) {
	if s.certs == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "storage is not configured")
		return domain.Certificate{}, false
	}
	cert, err := s.certs.GetByCertificateID(c.Request.Context(), c.Param("certificate_id"))
	if err != nil {
		writeError(c, err)
		return domain.Certificate{}, false
	}
	return cert, true
}

func intakeFromInput(input issueInput) (domain.CertificateIntake, error) {
	intake := domain.CertificateIntake{
		RecipientName:     input.RecipientName,
		CourseName:        input.CourseName,
		InstitutionName:   input.InstitutionName,
		IssuerName:        input.IssuerName,
		InstructorName:    input.InstructorName,
		IssueDate:         input.IssueDate,
		ExpiryDate:        input.ExpiryDate,
		DurationFrom:      input.DurationFrom,
		DurationTo:        input.DurationTo,
		Grade:             input.Grade,
		Template:          input.Template,
		QRPosition:        input.QRPosition,
		LogoPosition:      input.LogoPosition,
		SignaturePosition: input.SignaturePosition,
	}
	if input.LogoBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(input.LogoBase64)
		if err != nil {
			return domain.CertificateIntake{}, errors.New("logo_base64 is not valid base64")
		}
		intake.LogoBytes = data
	}
	if input.SignatureBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(input.SignatureBase64)
		if err != nil {
			return domain.CertificateIntake{}, errors.New("signature_base64 is not valid base64")
		}
		intake.SignatureBytes = data
	}
	return intake, nil
}

func buildCertificateResponse(cert domain.Certificate) certificateResponse {
	resp := certificateResponse{
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
		RevokedBy:         cert.RevokedBy,
		RestoredBy:        cert.RestoredBy,
		Template:          cert.Template,
		LogoURL:           cert.LogoURL,
		SignatureURL:      cert.SignatureURL,
		QRPosition:        cert.QRPosition,
		LogoPosition:      cert.LogoPosition,
		SignaturePosition: cert.SignaturePosition,
	}
	if !cert.CreatedAt.IsZero() {
		resp.CreatedAt = cert.CreatedAt.UTC().Format(time.RFC3339)
	}
	if cert.RevokedAt != nil {
		resp.RevokedAt = cert.RevokedAt.UTC().Format(time.RFC3339)
	}
	if cert.RestoredAt != nil {
		resp.RestoredAt = cert.RestoredAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidIntake):
		status, code = http.StatusBadRequest, "INVALID_INTAKE"
	case errors.Is(err, domain.ErrConfirmRequired):
		status, code = http.StatusBadRequest, "CONFIRM_REQUIRED"
	case errors.Is(err, domain.ErrDuplicateID):
		status, code = http.StatusConflict, "DUPLICATE_ID"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrLedgerUnavailable):
		status, code = http.StatusBadGateway, "LEDGER_UNAVAILABLE"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
