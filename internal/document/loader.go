// Package document turns uploaded resume files into plain text.
package document

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"resumeats/internal/errors"
	"resumeats/internal/utils"

	"github.com/gabriel-vasile/mimetype"
)

// Format is a supported resume file format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "text"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeZip  = "application/zip"
	mimeText = "text/plain"
)

// ErrNoFile is returned when Extract is called without a file
var ErrNoFile = errors.NewIOError(errors.ErrCodeFileNotFound, "No resume file was uploaded", nil)

// Upload is a file received from a browser form, an API call or the CLI
type Upload struct {
	FileName    string
	ContentType string // as declared by the client; detection does not trust it
	Data        []byte
}

// Empty reports whether the upload carries no file
func (u *Upload) Empty() bool {
	return u == nil || len(u.Data) == 0
}

// Loader extracts text from uploads within size and page limits
type Loader struct {
	maxSize  int64
	maxPages int
	logger   *errors.Logger
}

// NewLoader creates a loader. maxPages <= 0 disables the PDF page limit.
func NewLoader(maxSize int64, maxPages int, logger *errors.Logger) *Loader {
	return &Loader{
		maxSize:  maxSize,
		maxPages: maxPages,
		logger:   logger,
	}
}

// Extract returns the plain text of the upload
func (l *Loader) Extract(ctx context.Context, up *Upload) (string, error) {
	if up.Empty() {
		return "", ErrNoFile
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if l.maxSize > 0 && int64(len(up.Data)) > l.maxSize {
		return "", errors.NewIOError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("File is too large (%s, limit %s)", utils.FormatFileSize(int64(len(up.Data))), utils.FormatFileSize(l.maxSize)), nil).
			WithContext("file_name", up.FileName)
	}

	format, err := DetectFormat(up)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = l.extractPDF(up.Data)
	case FormatDOCX:
		text, err = extractDOCX(up.Data)
	case FormatText:
		text, err = extractText(up.Data)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.NewIOError(errors.ErrCodeEmptyDocument,
			"No text could be extracted from the uploaded file", nil).
			WithContext("file_name", up.FileName)
	}

	if l.logger != nil {
		l.logger.Debug("Extracted resume text",
			"file_name", up.FileName,
			"format", format,
			"bytes", len(up.Data),
			"chars", len(text))
	}

	return text, nil
}

// DetectFormat sniffs the content and falls back to the file extension when
// the content is an ambiguous container such as a plain zip.
func DetectFormat(up *Upload) (Format, error) {
	detected := mimetype.Detect(up.Data)

	switch {
	case detected.Is(mimePDF):
		return FormatPDF, nil
	case detected.Is(mimeDOCX):
		return FormatDOCX, nil
	case detected.Is(mimeZip) && utils.GetFileExtension(up.FileName) == ".docx":
		return FormatDOCX, nil
	}

	for m := detected; m != nil; m = m.Parent() {
		if m.Is(mimeText) {
			return FormatText, nil
		}
	}

	return "", errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
		"Unsupported file type. Please upload a PDF, DOCX or plain text resume.", nil).
		WithContext("detected_mime", detected.String()).
		WithContext("file_name", up.FileName)
}

func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"The text file is not valid UTF-8", nil)
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
