package document

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"resumeats/internal/errors"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disablePDFCPUConfigDir sync.Once

// pageCount validates the PDF structure and returns its page count
func pageCount(data []byte) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf validation panic: %v", r)
		}
	}()

	disablePDFCPUConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return api.PageCount(bytes.NewReader(data), conf)
}

func (l *Loader) extractPDF(data []byte) (string, error) {
	pages, err := pageCount(data)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"The PDF file could not be read", err)
	}

	if l.maxPages > 0 && pages > l.maxPages {
		return "", errors.NewValidationError(errors.ErrCodeTooManyPages,
			fmt.Sprintf("The PDF has %d pages; at most %d are accepted", pages, l.maxPages), nil)
	}

	text, err := readPDFText(data)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"The PDF file could not be read", err)
	}

	return text, nil
}

// readPDFText concatenates the plain text of every page. The parser panics on
// some malformed streams, so panics are turned into errors.
func readPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
