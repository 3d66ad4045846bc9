// Package render produces the printable certificate as an A4 landscape PDF.
// Layout and styling are chosen per template; the QR code embeds the public
// verification URL so a scan lands on the verify endpoint for this
// certificate.
package render

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"

	"certledger/internal/domain"
)

const (
	pageW = 842.0
	pageH = 595.0

	qrSize    = 90.0
	imgSize   = 70.0
	edgeInset = 40.0
)

// AssetLoader resolves a stored logo or signature URL to image bytes. A nil
// loader skips image placement entirely, which keeps rendering usable when
// the blob store is not reachable from this process.
type AssetLoader interface {
	Load(url string) ([]byte, error)
}

type PDFRenderer struct {
	verifyURLBase string
	assets        AssetLoader
}

func NewPDFRenderer(verifyURLBase string, assets AssetLoader) *PDFRenderer {
	return &PDFRenderer{
		verifyURLBase: strings.TrimRight(verifyURLBase, "/"),
		assets:        assets,
	}
}

type palette struct {
	border    [3]int
	heading   [3]int
	body      [3]int
	headFont  string
	bodyFont  string
	banner    string
	doubleRim bool
}

func paletteFor(template string) palette {
	switch template {
	case domain.TemplateCorporate:
		return palette{
			border:   [3]int{55, 71, 79},
			heading:  [3]int{38, 50, 56},
			body:     [3]int{69, 90, 100},
			headFont: "Helvetica",
			bodyFont: "Helvetica",
			banner:   "CERTIFICATE OF COMPLETION",
		}
	case domain.TemplatePremium:
		return palette{
			border:    [3]int{183, 141, 18},
			heading:   [3]int{120, 90, 10},
			body:      [3]int{60, 50, 30},
			headFont:  "Times",
			bodyFont:  "Times",
			banner:    "CERTIFICATE OF EXCELLENCE",
			doubleRim: true,
		}
	case domain.TemplateMinimal:
		return palette{
			border:   [3]int{200, 200, 200},
			heading:  [3]int{33, 33, 33},
			body:     [3]int{97, 97, 97},
			headFont: "Helvetica",
			bodyFont: "Helvetica",
			banner:   "CERTIFICATE",
		}
	default: // academic
		return palette{
			border:    [3]int{26, 35, 126},
			heading:   [3]int{26, 35, 126},
			body:      [3]int{55, 55, 75},
			headFont:  "Times",
			bodyFont:  "Times",
			banner:    "CERTIFICATE OF ACHIEVEMENT",
			doubleRim: true,
		}
	}
}

func (r *PDFRenderer) Render(cert domain.Certificate) ([]byte, error) {
	pal := paletteFor(cert.Template)

	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetLineWidth(3)
	pdf.SetDrawColor(pal.border[0], pal.border[1], pal.border[2])
	pdf.Rect(20, 20, pageW-40, pageH-40, "D")
	if pal.doubleRim {
		pdf.SetLineWidth(1)
		pdf.Rect(28, 28, pageW-56, pageH-56, "D")
	}

	pdf.SetTextColor(pal.heading[0], pal.heading[1], pal.heading[2])
	pdf.SetFont(pal.headFont, "B", 32)
	pdf.SetXY(0, 70)
	pdf.CellFormat(pageW, 40, pal.banner, "", 0, "C", false, 0, "")

	pdf.SetFont(pal.bodyFont, "", 14)
	pdf.SetTextColor(pal.body[0], pal.body[1], pal.body[2])
	pdf.SetXY(0, 130)
	pdf.CellFormat(pageW, 20, "This is to certify that", "", 0, "C", false, 0, "")

	pdf.SetFont(pal.headFont, "B", 28)
	pdf.SetTextColor(pal.heading[0], pal.heading[1], pal.heading[2])
	pdf.SetXY(0, 160)
	pdf.CellFormat(pageW, 34, cert.RecipientName, "", 0, "C", false, 0, "")

	pdf.SetFont(pal.bodyFont, "", 14)
	pdf.SetTextColor(pal.body[0], pal.body[1], pal.body[2])
	pdf.SetXY(0, 205)
	pdf.CellFormat(pageW, 20, "has successfully completed", "", 0, "C", false, 0, "")

	pdf.SetFont(pal.headFont, "B", 20)
	pdf.SetXY(0, 230)
	pdf.CellFormat(pageW, 26, cert.CourseName, "", 0, "C", false, 0, "")

	detail := fmt.Sprintf("Issued by %s on %s", cert.InstitutionName, cert.IssueDate)
	pdf.SetFont(pal.bodyFont, "", 13)
	pdf.SetXY(0, 270)
	pdf.CellFormat(pageW, 18, detail, "", 0, "C", false, 0, "")

	y := 295.0
	if cert.InstructorName != "" {
		pdf.SetXY(0, y)
		pdf.CellFormat(pageW, 18, "Instructor: "+cert.InstructorName, "", 0, "C", false, 0, "")
		y += 20
	}
	if cert.Grade != "" {
		pdf.SetXY(0, y)
		pdf.CellFormat(pageW, 18, "Grade: "+cert.Grade, "", 0, "C", false, 0, "")
		y += 20
	}
	if cert.DurationFrom != "" && cert.DurationTo != "" {
		pdf.SetXY(0, y)
		pdf.CellFormat(pageW, 18, fmt.Sprintf("Duration: %s to %s", cert.DurationFrom, cert.DurationTo), "", 0, "C", false, 0, "")
		y += 20
	}
	if cert.ExpiryDate != "" {
		pdf.SetXY(0, y)
		pdf.CellFormat(pageW, 18, "Valid until: "+cert.ExpiryDate, "", 0, "C", false, 0, "")
	}

	// Issuer signature block. The signature image, when present, sits just
	// above the printed issuer name.
	const sigBlockW = imgSize + 40
	sigX, sigY := anchorPoint(cert.SignaturePosition, sigBlockW)
	if err := r.placeImage(pdf, cert.SignatureURL, "sig_"+cert.CertificateID, sigX+20, sigY, imgSize, imgSize*0.5); err != nil {
		return nil, err
	}
	pdf.SetFont(pal.bodyFont, "I", 12)
	pdf.SetXY(sigX, sigY+imgSize*0.5+4)
	pdf.CellFormat(sigBlockW, 14, cert.IssuerName, "T", 0, "C", false, 0, "")
	pdf.SetFont(pal.bodyFont, "", 9)
	pdf.SetXY(sigX, sigY+imgSize*0.5+20)
	pdf.CellFormat(sigBlockW, 12, "Authorized Signatory", "", 0, "C", false, 0, "")

	logoX, logoY := anchorPoint(cert.LogoPosition, imgSize)
	if err := r.placeImage(pdf, cert.LogoURL, "logo_"+cert.CertificateID, logoX, logoY, imgSize, imgSize); err != nil {
		return nil, err
	}

	if err := r.placeQR(pdf, cert); err != nil {
		return nil, err
	}

	pdf.SetFont("Courier", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(0, pageH-52)
	pdf.CellFormat(pageW, 10, cert.CertificateID, "", 0, "C", false, 0, "")
	pdf.SetXY(0, pageH-40)
	pdf.CellFormat(pageW, 10, "SHA-256 "+cert.ContentHash, "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) placeQR(pdf *gofpdf.Fpdf, cert domain.Certificate) error {
	content := r.verifyURLBase + "/" + cert.CertificateID
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return fmt.Errorf("qr encode: %w", err)
	}
	scaled, err := barcode.Scale(code, 256, 256)
	if err != nil {
		return fmt.Errorf("qr scale: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return fmt.Errorf("qr png: %w", err)
	}

	x, y := anchorPoint(cert.QRPosition, qrSize)
	name := "qr_" + cert.CertificateID
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	pdf.ImageOptions(name, x, y, qrSize, qrSize, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return pdf.Error()
}

func (r *PDFRenderer) placeImage(pdf *gofpdf.Fpdf, url, name string, x, y, w, h float64) error {
	if r.assets == nil || url == "" {
		return nil
	}
	data, err := r.assets.Load(url)
	if err != nil {
		return fmt.Errorf("load asset %s: %w", url, err)
	}
	if len(data) == 0 {
		return nil
	}
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
	pdf.ImageOptions(name, x, y, w, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return pdf.Error()
}

// anchorPoint maps a named corner or edge to the top-left coordinate of a
// square of the given size, inset from the page border.
func anchorPoint(position string, size float64) (float64, float64) {
	switch position {
	case "top-left":
		return edgeInset, edgeInset
	case "top-center":
		return (pageW - size) / 2, edgeInset
	case "top-right":
		return pageW - size - edgeInset, edgeInset
	case "bottom-left":
		return edgeInset, pageH - size - edgeInset
	case "bottom-center":
		return (pageW - size) / 2, pageH - size - edgeInset
	default: // bottom-right
		return pageW - size - edgeInset, pageH - size - edgeInset
	}
}
