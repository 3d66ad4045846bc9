package render

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"certledger/internal/domain"
)

func sampleCert() domain.Certificate {
	return domain.Certificate{
		ID:                "11111111-1111-1111-1111-111111111111",
		CertificateID:     "CERT-LX3K9A2-F8G1J2K",
		RecipientName:     "Jane Doe",
		CourseName:        "Blockchain 101",
		InstitutionName:   "Tech Academy",
		IssuerName:        "Dr. Smith",
		InstructorName:    "Prof. Lee",
		IssueDate:         "2024-01-15",
		ExpiryDate:        "2026-01-15",
		Grade:             "A",
		ContentHash:       strings.Repeat("ab", 32),
		Template:          domain.TemplateAcademic,
		QRPosition:        "bottom-right",
		LogoPosition:      "top-center",
		SignaturePosition: "bottom-center",
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewPDFRenderer("https://certs.example.com/verify", nil)
	for _, tpl := range []string{
		domain.TemplateAcademic,
		domain.TemplateCorporate,
		domain.TemplatePremium,
		domain.TemplateMinimal,
	} {
		cert := sampleCert()
		cert.Template = tpl
		out, err := r.Render(cert)
		if err != nil {
			t.Fatalf("render %s: %v", tpl, err)
		}
		if !bytes.HasPrefix(out, []byte("%PDF")) {
			t.Fatalf("render %s: not a pdf", tpl)
		}
	}
}

type stubAssets struct {
	data map[string][]byte
	err  error
}

func (s *stubAssets) Load(url string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data[url], nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestRenderEmbedsAssets(t *testing.T) {
	cert := sampleCert()
	cert.LogoURL = "http://blobs/logos/x"
	cert.SignatureURL = "http://blobs/signatures/x"
	assets := &stubAssets{data: map[string][]byte{
		cert.LogoURL:      pngBytes(t),
		cert.SignatureURL: pngBytes(t),
	}}
	out, err := NewPDFRenderer("https://certs.example.com/verify", assets).Render(cert)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("empty output")
	}
}

func TestRenderAssetFailurePropagates(t *testing.T) {
	cert := sampleCert()
	cert.LogoURL = "http://blobs/logos/x"
	assets := &stubAssets{err: errors.New("blob store down")}
	if _, err := NewPDFRenderer("https://certs.example.com/verify", assets).Render(cert); err == nil {
		t.Fatalf("expected asset error")
	}
}

func TestAnchorPoint(t *testing.T) {
	cases := map[string][2]float64{
		"top-left":      {edgeInset, edgeInset},
		"top-right":     {pageW - 90 - edgeInset, edgeInset},
		"bottom-left":   {edgeInset, pageH - 90 - edgeInset},
		"bottom-right":  {pageW - 90 - edgeInset, pageH - 90 - edgeInset},
		"top-center":    {(pageW - 90) / 2, edgeInset},
		"bottom-center": {(pageW - 90) / 2, pageH - 90 - edgeInset},
		"garbage":       {pageW - 90 - edgeInset, pageH - 90 - edgeInset},
	}
	for pos, want := range cases {
		x, y := anchorPoint(pos, 90)
		if x != want[0] || y != want[1] {
			t.Fatalf("%s: got (%v,%v) want (%v,%v)", pos, x, y, want[0], want[1])
		}
	}
}
