package certificate_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/vision-360/safety-lms/internal/certificate"
)

func TestRenderProducesPDF(t *testing.T) {
	r := certificate.NewPDFRenderer()
	out, err := r.Render(certificate.Certificate{
		RecipientName: "Alice Mwangi",
		CourseTitle:   "Truck Loading and Unloading Safety",
		Score:         92,
		DateIssued:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", out[:min(8, len(out))])
	}
	if len(out) < 1000 {
		t.Fatalf("suspiciously small document: %d bytes", len(out))
	}
}

func TestRenderRequiresRecipient(t *testing.T) {
	r := certificate.NewPDFRenderer()
	if _, err := r.Render(certificate.Certificate{CourseTitle: "X"}); err == nil {
		t.Fatal("missing recipient must error")
	}
}

func TestFilename(t *testing.T) {
	got := certificate.Filename("Truck Loading and Unloading Safety")
	want := "Truck-Loading-and-Unloading-Safety-certificate.pdf"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if certificate.Filename("???") != "certificate-certificate.pdf" {
		t.Fatalf("fallback name: %q", certificate.Filename("???"))
	}
}
