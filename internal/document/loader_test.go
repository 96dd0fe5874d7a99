package document

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"resumeats/internal/errors"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Senior</w:t></w:r><w:r><w:tab/><w:t>Go Engineer</w:t></w:r></w:p></w:body></w:document>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDocx(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": documentRels,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	loader := NewLoader(1024*1024, 5, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		upload   *Upload
		wantCode string
		contains []string
	}{
		{
			name:     "nil upload",
			upload:   nil,
			wantCode: errors.ErrCodeFileNotFound,
		},
		{
			name:     "empty data",
			upload:   &Upload{FileName: "resume.pdf"},
			wantCode: errors.ErrCodeFileNotFound,
		},
		{
			name:     "plain text",
			upload:   &Upload{FileName: "resume.txt", Data: []byte("\ufeff  Jane Doe\nGo Engineer\n\n")},
			contains: []string{"Jane Doe\nGo Engineer"},
		},
		{
			name:     "whitespace only",
			upload:   &Upload{FileName: "resume.txt", Data: []byte(" \n\t\n ")},
			wantCode: errors.ErrCodeEmptyDocument,
		},
		{
			name:     "docx",
			upload:   &Upload{FileName: "resume.docx", Data: buildDocx(t)},
			contains: []string{"Jane Doe\n", "Senior\tGo Engineer"},
		},
		{
			name:     "broken pdf",
			upload:   &Upload{FileName: "resume.pdf", Data: []byte("%PDF-1.4\nthis is not really a pdf\n")},
			wantCode: errors.ErrCodeInvalidFormat,
		},
		{
			name:     "image",
			upload:   &Upload{FileName: "resume.png", Data: append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)},
			wantCode: errors.ErrCodeUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := loader.Extract(ctx, tt.upload)

			if tt.wantCode != "" {
				if err == nil {
					t.Fatalf("expected %s error, got text %q", tt.wantCode, text)
				}
				if !errors.IsCode(err, tt.wantCode) {
					t.Fatalf("expected code %s, got %v", tt.wantCode, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("extracted text %q does not contain %q", text, want)
				}
			}
		})
	}
}

func TestExtractRejectsOversizedUpload(t *testing.T) {
	loader := NewLoader(16, 0, nil)

	_, err := loader.Extract(context.Background(), &Upload{
		FileName: "resume.txt",
		Data:     []byte(strings.Repeat("x", 17)),
	})
	if !errors.IsCode(err, errors.ErrCodeFileTooLarge) {
		t.Fatalf("expected FILE_TOO_LARGE, got %v", err)
	}
}

func TestExtractHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(1024, 0, nil).Extract(ctx, &Upload{FileName: "resume.txt", Data: []byte("text")})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDetectFormatUsesExtensionForZip(t *testing.T) {
	data := buildDocx(t)

	format, err := DetectFormat(&Upload{FileName: "Resume.DOCX", Data: data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != FormatDOCX {
		t.Errorf("format = %q, want %q", format, FormatDOCX)
	}
}

func TestStripDocumentXMLRejectsMalformedXML(t *testing.T) {
	if _, err := stripDocumentXML("<w:document><w:p>"); err == nil {
		t.Error("expected error for truncated XML")
	}
}
