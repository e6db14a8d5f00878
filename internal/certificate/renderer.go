package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

var ErrMissingRecipient = errors.New("certificate requires a recipient name")

// Certificate is the draw-and-save contract: everything the renderer needs
// to produce a downloadable document.
type Certificate struct {
	RecipientName string
	CourseTitle   string
	Score         int
	// DateIssued is stamped at render time, not at completion time. The
	// original application had the same behavior; kept as-is.
	DateIssued time.Time
}

// Renderer produces a downloadable document for a passed assessment.
type Renderer interface {
	Render(c Certificate) ([]byte, error)
}

// PDFRenderer draws the landscape A4 completion certificate.
type PDFRenderer struct {
	Brand string // header line above the title
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Brand: "VISION 360 SAFETY TRAINING"}
}

// Brand palette.
var (
	accentR, accentG, accentB = 249, 115, 22 // orange
	inkR, inkG, inkB          = 17, 24, 39   // near-black
)

func (r *PDFRenderer) Render(c Certificate) ([]byte, error) {
	if c.RecipientName == "" {
		return nil, ErrMissingRecipient
	}
	if c.DateIssued.IsZero() {
		c.DateIssued = time.Now()
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Border
	pdf.SetLineWidth(2)
	pdf.SetDrawColor(accentR, accentG, accentB)
	pdf.Rect(10, 10, 277, 190, "D")

	// Brand header
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(accentR, accentG, accentB)
	r.centered(pdf, 30, r.Brand)

	pdf.SetFont("Helvetica", "B", 40)
	pdf.SetTextColor(inkR, inkG, inkB)
	r.centered(pdf, 50, "CERTIFICATE")
	pdf.SetFont("Helvetica", "", 20)
	r.centered(pdf, 60, "OF COMPLETION")

	// Recipient
	pdf.SetFont("Helvetica", "", 14)
	r.centered(pdf, 85, "This certifies that")
	pdf.SetFont("Helvetica", "B", 32)
	r.centered(pdf, 105, c.RecipientName)
	pdf.SetLineWidth(0.5)
	pdf.Line(70, 108, 227, 108)

	// Course
	pdf.SetFont("Helvetica", "", 14)
	r.centered(pdf, 125, "has successfully completed the course")
	pdf.SetFont("Helvetica", "B", 24)
	r.centered(pdf, 140, c.CourseTitle)
	pdf.SetFont("Helvetica", "", 12)
	r.centered(pdf, 152, fmt.Sprintf("Final assessment score: %d%%", c.Score))

	// Date and signature
	const lineY = 175.0
	pdf.SetFont("Helvetica", "", 12)
	r.centeredAt(pdf, 50, 60, lineY-9, c.DateIssued.Format("1/2/2006"))
	pdf.SetDrawColor(inkR, inkG, inkB)
	pdf.Line(50, lineY, 110, lineY)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	r.centeredAt(pdf, 50, 60, lineY+2, "Date")

	pdf.SetFont("Times", "I", 14)
	pdf.SetTextColor(inkR, inkG, inkB)
	r.centeredAt(pdf, 180, 80, lineY-9, "Vision 360 Team")
	pdf.Line(180, lineY, 260, lineY)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	r.centeredAt(pdf, 180, 80, lineY+2, "Instructor / Administrator")

	if pdf.Err() {
		return nil, pdf.Error()
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// centered draws a line of text centered on the page at height y.
func (r *PDFRenderer) centered(pdf *fpdf.Fpdf, y float64, text string) {
	r.centeredAt(pdf, 10, 277, y, text)
}

// centeredAt draws text centered within the horizontal band [x, x+w] at y.
func (r *PDFRenderer) centeredAt(pdf *fpdf.Fpdf, x, w, y float64, text string) {
	pdf.SetXY(x, y)
	pdf.CellFormat(w, 8, text, "", 0, "C", false, 0, "")
}

// Filename derives a safe download name for a certificate.
func Filename(courseTitle string) string {
	out := make([]rune, 0, len(courseTitle))
	for _, r := range courseTitle {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		out = []rune("certificate")
	}
	return string(out) + "-certificate.pdf"
}
