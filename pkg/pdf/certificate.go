package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData feeds the verification certificate template.
type CertificateData struct {
	VerificationID string
	FullName       string
	Country        string
	VerifiedAt     time.Time
}

// RenderCertificate produces the one-page KYC approval certificate offered
// to verified users.
func RenderCertificate(data CertificateData) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("SwiftRemit Identity Verification Certificate", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 22)
	doc.CellFormat(0, 20, "SwiftRemit", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 16)
	doc.CellFormat(0, 12, "Identity Verification Certificate", "", 1, "C", false, 0, "")
	doc.Ln(10)

	doc.SetFont("Helvetica", "", 12)
	doc.MultiCell(0, 8, fmt.Sprintf(
		"This certifies that %s (%s) completed identity verification on %s.",
		data.FullName, data.Country, data.VerifiedAt.Format("2 January 2006")), "", "L", false)
	doc.Ln(6)

	doc.SetFont("Helvetica", "I", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("Reference: %s", data.VerificationID), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
