// Package extract pulls plain text out of uploaded transcript documents.
package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nguyenthenguyen/docx"
	"golang.org/x/text/unicode/norm"

	"meeting-backend/internal/shared/storage/object"
)

const (
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePlain = "text/plain"
	mimeZip   = "application/zip"
)

var (
	// ErrUnsupportedType is returned for payloads that are neither .docx nor plain text.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrCorruptDocument is returned when a .docx cannot be opened or its body is not well-formed XML.
	ErrCorruptDocument = errors.New("unreadable document")
)

// ExtractText reads a stored upload and extracts its text.
func ExtractText(ctx context.Context, store object.ObjectStore, key string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: %w", key, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: read: %w", key, err)
	}
	text, err := ExtractTextFromBytes(ctx, raw, fileName)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: %w", key, err)
	}
	return text, nil
}

// ExtractTextFromBytes detects the payload type from its content and file
// name and returns NFC-normalized text.
func ExtractTextFromBytes(ctx context.Context, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var (
		text string
		err  error
	)
	switch kind := DetectType(data, fileName); kind {
	case MimeDOCX:
		text, err = extractDOCX(data)
	case MimePlain:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupportedType)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, kind)
	}
	if err != nil {
		return "", err
	}
	return norm.NFC.String(text), nil
}

// DetectType sniffs data. A generic zip is treated as .docx only when the file
// name says so; the docx reader rejects it later if word/document.xml is absent.
func DetectType(data []byte, fileName string) string {
	detected := mimetype.Detect(data)
	switch {
	case detected.Is(MimeDOCX):
		return MimeDOCX
	case detected.Is(mimeZip) && strings.EqualFold(filepath.Ext(fileName), ".docx"):
		return MimeDOCX
	case detected.Is(MimePlain):
		return MimePlain
	}
	return detected.String()
}

// IsDocx reports whether an upload looks like a .docx from its declared
// content type or its file name. Either one is enough.
func IsDocx(contentType, fileName string) bool {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return clean == MimeDOCX || strings.EqualFold(filepath.Ext(fileName), ".docx")
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty docx data", ErrCorruptDocument)
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent())
}

// stripDocxXML keeps the character data of text runs and turns paragraph,
// break and tab elements into whitespace. Markup whitespace between elements
// is dropped. Malformed XML is reported as ErrCorruptDocument.
func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	inText := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if inText > 0 {
				buf.Write(t)
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText++
			case "tab":
				buf.WriteString("\t")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if inText > 0 {
					inText--
				}
			case "p", "br":
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
