package document

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"resumeats/internal/errors"

	"github.com/nguyenthenguyen/docx"
)

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"The DOCX file could not be read", err)
	}
	defer doc.Close()

	return stripDocumentXML(doc.Editable().GetContent())
}

// stripDocumentXML keeps character data from word/document.xml, ending each
// paragraph, line break and tab with whitespace.
func stripDocumentXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var sb strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
				"The DOCX file could not be read", err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "tab":
				sb.WriteString("\t")
			case "br":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String(), nil
}
