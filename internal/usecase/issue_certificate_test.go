package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"certledger/internal/domain"
	"certledger/internal/infra/crypto"
)

type stubCertRepo struct {
	byCertID map[string]domain.Certificate
	byID     map[string]domain.Certificate

	createErr    error
	dupFirstN    int
	createCalls  int
	txRefs       map[string]string
	setTxRefErr  error
	listed       []domain.Certificate
}

func newStubCertRepo() *stubCertRepo {
	return &stubCertRepo{
		byCertID: make(map[string]domain.Certificate),
		byID:     make(map[string]domain.Certificate),
		txRefs:   make(map[string]string),
	}
}

func (r *stubCertRepo) Create(ctx context.Context, cert domain.Certificate) error {
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	if r.dupFirstN > 0 {
		r.dupFirstN--
		return domain.ErrDuplicateID
	}
	if _, exists := r.byCertID[cert.CertificateID]; exists {
		return domain.ErrDuplicateID
	}
	r.byCertID[cert.CertificateID] = cert
	r.byID[cert.ID] = cert
	return nil
}

func (r *stubCertRepo) GetByCertificateID(ctx context.Context, certificateID string) (domain.Certificate, error) {
	cert, ok := r.byCertID[certificateID]
	if !ok {
		return domain.Certificate{}, domain.ErrNotFound
	}
	return cert, nil
}

func (r *stubCertRepo) GetByID(ctx context.Context, id string) (domain.Certificate, error) {
	cert, ok := r.byID[id]
	if !ok {
		return domain.Certificate{}, domain.ErrNotFound
	}
	return cert, nil
}

func (r *stubCertRepo) List(ctx context.Context) ([]domain.Certificate, error) {
	return r.listed, nil
}

func (r *stubCertRepo) SetChainTxRef(ctx context.Context, id, txRef string) error {
	if r.setTxRefErr != nil {
		return r.setTxRefErr
	}
	r.txRefs[id] = txRef
	if cert, ok := r.byID[id]; ok {
		cert.ChainTxRef = txRef
		r.byID[id] = cert
		r.byCertID[cert.CertificateID] = cert
	}
	return nil
}

func (r *stubCertRepo) CountAll(ctx context.Context) (int64, error)      { return int64(len(r.byID)), nil }
func (r *stubCertRepo) CountRevoked(ctx context.Context) (int64, error)  { return 0, nil }
func (r *stubCertRepo) CountAnchored(ctx context.Context) (int64, error) { return int64(len(r.txRefs)), nil }

type stubBlobStore struct {
	paths []string
	err   error
}

func (b *stubBlobStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.paths = append(b.paths, path)
	return "http://blobs.local/" + path, nil
}

type stubLedger struct {
	issueTx    string
	issueErr   error
	issueCalls int

	record    domain.LedgerRecord
	verifyErr error

	count    int64
	countErr error
}

func (l *stubLedger) IssueCertificate(ctx context.Context, certificateID, contentHash string) (string, error) {
	l.issueCalls++
	if l.issueErr != nil {
		return "", l.issueErr
	}
	return l.issueTx, nil
}

func (l *stubLedger) VerifyCertificate(ctx context.Context, certificateID string) (domain.LedgerRecord, error) {
	if l.verifyErr != nil {
		return domain.LedgerRecord{}, l.verifyErr
	}
	return l.record, nil
}

func (l *stubLedger) RevokeCertificate(ctx context.Context, certificateID string) (string, error) {
	return "", errors.New("not used")
}

func (l *stubLedger) GetCertificateCount(ctx context.Context) (int64, error) {
	if l.countErr != nil {
		return 0, l.countErr
	}
	return l.count, nil
}

type stubRenderer struct {
	pdf []byte
	err error
}

func (r *stubRenderer) Render(cert domain.Certificate) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.pdf, nil
}

func sampleIntake() domain.CertificateIntake {
	return domain.CertificateIntake{
		RecipientName:   "Jane Doe",
		CourseName:      "Blockchain 101",
		InstitutionName: "Tech Academy",
		IssuerName:      "Dr. Smith",
		IssueDate:       "2024-01-15",
	}
}

func newIssueUC(repo *stubCertRepo, blobs *stubBlobStore, ledger *stubLedger, renderer *stubRenderer) *IssueCertificate {
	return &IssueCertificate{
		Certs:    repo,
		Blobs:    blobs,
		Ledger:   ledger,
		Crypto:   crypto.NewService(nil),
		Renderer: renderer,
	}
}

func TestIssueHappyPath(t *testing.T) {
	repo := newStubCertRepo()
	ledger := &stubLedger{issueTx: "0xdeadbeef"}
	renderer := &stubRenderer{pdf: []byte("%PDF-1.4")}
	uc := newIssueUC(repo, &stubBlobStore{}, ledger, renderer)

	var steps []int
	result, err := uc.Execute(context.Background(), IssueRequest{
		Intake:   sampleIntake(),
		Progress: func(step int) { steps = append(steps, step) },
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !result.Anchored {
		t.Fatalf("expected anchored result")
	}
	if result.Certificate.ChainTxRef != "0xdeadbeef" {
		t.Fatalf("chain tx ref not set: %q", result.Certificate.ChainTxRef)
	}
	if len(result.Certificate.ContentHash) != 64 {
		t.Fatalf("content hash length: %d", len(result.Certificate.ContentHash))
	}
	if !strings.HasPrefix(result.Certificate.CertificateID, "CERT-") {
		t.Fatalf("unexpected certificate id: %s", result.Certificate.CertificateID)
	}
	if string(result.PDF) != "%PDF-1.4" {
		t.Fatalf("missing pdf bytes")
	}
	want := []int{StepHash, StepUpload, StepPersist, StepAnchor, StepRender}
	if len(steps) != len(want) {
		t.Fatalf("progress steps: got %v want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("progress steps: got %v want %v", steps, want)
		}
	}
	if repo.txRefs[result.Certificate.ID] != "0xdeadbeef" {
		t.Fatalf("tx ref not persisted")
	}
}

func TestIssueValidationRejectedBeforePersistence(t *testing.T) {
	repo := newStubCertRepo()
	uc := newIssueUC(repo, &stubBlobStore{}, &stubLedger{}, &stubRenderer{})

	intake := sampleIntake()
	intake.RecipientName = ""
	_, err := uc.Execute(context.Background(), IssueRequest{Intake: intake})
	if !errors.Is(err, domain.ErrInvalidIntake) {
		t.Fatalf("expected intake error, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Fatalf("nothing may be persisted on validation failure")
	}
}

func TestIssueUploadFailureAborts(t *testing.T) {
	repo := newStubCertRepo()
	blobs := &stubBlobStore{err: errors.New("blob store down")}
	uc := newIssueUC(repo, blobs, &stubLedger{}, &stubRenderer{})

	intake := sampleIntake()
	intake.LogoBytes = []byte{0x89, 0x50}
	_, err := uc.Execute(context.Background(), IssueRequest{Intake: intake})
	if err == nil {
		t.Fatalf("expected upload error")
	}
	if repo.createCalls != 0 {
		t.Fatalf("no record may exist after upload failure")
	}
}

func TestIssueAssetsWithoutBlobStoreRejected(t *testing.T) {
	repo := newStubCertRepo()
	uc := &IssueCertificate{
		Certs:    repo,
		Crypto:   crypto.NewService(nil),
		Renderer: &stubRenderer{},
	}

	intake := sampleIntake()
	intake.SignatureBytes = []byte{0x89, 0x50}
	_, err := uc.Execute(context.Background(), IssueRequest{Intake: intake})
	if err == nil {
		t.Fatalf("expected rejection when assets cannot be stored")
	}
	if repo.createCalls != 0 {
		t.Fatalf("no record may exist when assets were dropped")
	}

	// Without assets the same wiring issues fine.
	if _, err := uc.Execute(context.Background(), IssueRequest{Intake: sampleIntake()}); err != nil {
		t.Fatalf("assetless issue: %v", err)
	}
}

func TestIssuePersistFailureAborts(t *testing.T) {
	repo := newStubCertRepo()
	repo.createErr = errors.New("store down")
	ledger := &stubLedger{issueTx: "0x1"}
	uc := newIssueUC(repo, &stubBlobStore{}, ledger, &stubRenderer{})

	_, err := uc.Execute(context.Background(), IssueRequest{Intake: sampleIntake()})
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if ledger.issueCalls != 0 {
		t.Fatalf("ledger must not be touched when persistence fails")
	}
}

func TestIssueDuplicateIDRetries(t *testing.T) {
	repo := newStubCertRepo()
	repo.dupFirstN = 2
	uc := newIssueUC(repo, &stubBlobStore{}, &stubLedger{issueTx: "0x1"}, &stubRenderer{})

	result, err := uc.Execute(context.Background(), IssueRequest{Intake: sampleIntake()})
	if err != nil {
		t.Fatalf("issue with retries: %v", err)
	}
	if repo.createCalls != 3 {
		t.Fatalf("expected 3 create attempts, got %d", repo.createCalls)
	}
	// The retried record must stay self-consistent: id is part of the hash.
	recomputed := crypto.NewService(nil).ContentHash(result.Certificate)
	if recomputed != result.Certificate.ContentHash {
		t.Fatalf("content hash stale after id regeneration")
	}
}

func TestIssueDuplicateIDGivesUp(t *testing.T) {
	repo := newStubCertRepo()
	repo.dupFirstN = 5
	uc := newIssueUC(repo, &stubBlobStore{}, &stubLedger{}, &stubRenderer{})

	_, err := uc.Execute(context.Background(), IssueRequest{Intake: sampleIntake()})
	if !errors.Is(err, domain.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	if repo.createCalls != maxIDAttempts {
		t.Fatalf("expected %d attempts, got %d", maxIDAttempts, repo.createCalls)
	}
}

func TestIssueLedgerFailureIsNonFatal(t *testing.T) {
	repo := newStubCertRepo()
	ledger := &stubLedger{issueErr: errors.New("chain unreachable")}
	uc := newIssueUC(repo, &stubBlobStore{}, ledger, &stubRenderer{pdf: []byte("x")})

	result, err := uc.Execute(context.Background(), IssueRequest{Intake: sampleIntake()})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if result.Anchored {
		t.Fatalf("must not report anchored")
	}
	if result.Certificate.ChainTxRef != "" {
		t.Fatalf("chain tx ref must stay empty")
	}
	if _, ok := repo.byCertID[result.Certificate.CertificateID]; !ok {
		t.Fatalf("record must exist despite anchor failure")
	}
}

func TestIssueRenderFailurePropagatesAfterPersist(t *testing.T) {
	repo := newStubCertRepo()
	renderer := &stubRenderer{err: errors.New("font missing")}
	uc := newIssueUC(repo, &stubBlobStore{}, &stubLedger{issueTx: "0x1"}, renderer)

	result, err := uc.Execute(context.Background(), IssueRequest{Intake: sampleIntake()})
	if !errors.Is(err, domain.ErrRenderFailed) {
		t.Fatalf("expected render error, got %v", err)
	}
	if _, ok := repo.byCertID[result.Certificate.CertificateID]; !ok {
		t.Fatalf("record must remain after render failure")
	}
}

func TestIssueUploadsKeyedByCertificateID(t *testing.T) {
	repo := newStubCertRepo()
	blobs := &stubBlobStore{}
	uc := newIssueUC(repo, blobs, &stubLedger{issueTx: "0x1"}, &stubRenderer{})

	intake := sampleIntake()
	intake.LogoBytes = []byte{1}
	intake.SignatureBytes = []byte{2}
	result, err := uc.Execute(context.Background(), IssueRequest{Intake: intake})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(blobs.paths) != 2 {
		t.Fatalf("expected two uploads, got %v", blobs.paths)
	}
	id := result.Certificate.CertificateID
	if blobs.paths[0] != "logos/"+id || blobs.paths[1] != "signatures/"+id {
		t.Fatalf("unexpected blob paths: %v", blobs.paths)
	}
	if result.Certificate.LogoURL == "" || result.Certificate.SignatureURL == "" {
		t.Fatalf("blob urls missing on record")
	}
}

func TestIssueDefaultsAppliedOnce(t *testing.T) {
	repo := newStubCertRepo()
	uc := newIssueUC(repo, &stubBlobStore{}, &stubLedger{}, &stubRenderer{})
	uc.Now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }

	result, err := uc.Execute(context.Background(), IssueRequest{Intake: sampleIntake()})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	cert := result.Certificate
	if cert.Template != domain.TemplateAcademic {
		t.Fatalf("default template not applied: %q", cert.Template)
	}
	if cert.QRPosition != "bottom-right" || cert.LogoPosition != "top-center" || cert.SignaturePosition != "bottom-center" {
		t.Fatalf("default positions not applied: %+v", cert)
	}
	if cert.IsRevoked {
		t.Fatalf("new certificates must not be revoked")
	}
}
