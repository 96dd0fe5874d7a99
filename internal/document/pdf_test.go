package document

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"resumeats/internal/errors"
)

// buildPDF writes a minimal uncompressed PDF with one page per entry in
// pages, each showing its text in Helvetica.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	// 1 catalog, 2 page tree, 3 font, then a page and a content stream per page
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
		strings.Join(kids, " "), len(pages)))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func TestExtractPDFReadsEveryPage(t *testing.T) {
	data := buildPDF(t, "Jane Doe Senior Go Engineer", "Experience at Acme Corp", "Skills Kubernetes and Postgres")

	text, err := NewLoader(1<<20, 5, errors.NewNopLogger()).Extract(context.Background(), &Upload{FileName: "resume.pdf", Data: data})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	for _, want := range []string{"Jane Doe Senior Go Engineer", "Experience at Acme Corp", "Skills Kubernetes and Postgres"} {
		if !strings.Contains(text, want) {
			t.Errorf("extracted text %q does not contain %q", text, want)
		}
	}
	if first, last := strings.Index(text, "Jane Doe"), strings.Index(text, "Skills"); first > last {
		t.Errorf("pages out of order in %q", text)
	}
}

func TestExtractPDFDetectedWithoutExtension(t *testing.T) {
	data := buildPDF(t, "Plain resume")

	text, err := NewLoader(1<<20, 0, nil).Extract(context.Background(), &Upload{FileName: "upload", Data: data})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "Plain resume") {
		t.Errorf("extracted text %q", text)
	}
}

func TestExtractPDFPageLimit(t *testing.T) {
	data := buildPDF(t, "Page one", "Page two")

	tests := []struct {
		name     string
		maxPages int
		wantCode string
	}{
		{"over limit", 1, errors.ErrCodeTooManyPages},
		{"at limit", 2, ""},
		{"no limit", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(1<<20, tt.maxPages, nil).Extract(context.Background(), &Upload{FileName: "resume.pdf", Data: data})
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Extract() error = %v", err)
				}
				return
			}
			if !errors.IsCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestPageCount(t *testing.T) {
	count, err := pageCount(buildPDF(t, "a", "b", "c"))
	if err != nil {
		t.Fatalf("pageCount() error = %v", err)
	}
	if count != 3 {
		t.Errorf("pageCount() = %d, want 3", count)
	}
}
