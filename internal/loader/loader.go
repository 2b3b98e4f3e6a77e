package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedType is returned for files whose extension has no extractor.
var ErrUnsupportedType = errors.New("unsupported document type")

// DocType identifies how a document's text was extracted.
type DocType string

const (
	TypeText     DocType = "txt"
	TypeMarkdown DocType = "md"
	TypePDF      DocType = "pdf"
	TypeDocx     DocType = "docx"
	TypeODT      DocType = "odt"
	TypeRTF      DocType = "rtf"
)

var extensions = map[string]DocType{
	".txt":      TypeText,
	".md":       TypeMarkdown,
	".markdown": TypeMarkdown,
	".text":     TypeText,
	".pdf":      TypePDF,
	".docx":     TypeDocx,
	".odt":      TypeODT,
	".rtf":      TypeRTF,
}

// Document is the extracted text of one file.
type Document struct {
	Source string
	Text   string
	Type   DocType
	// Pages is the number of PDF pages read; 0 for other types.
	Pages int
	Hash  string
}

// Characters returns the document length in characters.
func (d *Document) Characters() int {
	return utf8.RuneCountInString(d.Text)
}

// DetectType maps a file name to its DocType by extension.
func DetectType(path string) (DocType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	t, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedType, ext, strings.Join(SupportedExtensions(), ", "))
	}
	return t, nil
}

// SupportedExtensions lists the file extensions Load understands.
func SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown", ".text", ".pdf", ".docx", ".odt", ".rtf"}
}

// IsSupported reports whether Load can extract text from path.
func IsSupported(path string) bool {
	_, err := DetectType(path)
	return err == nil
}

// Load reads the file at path and extracts its text based on the extension.
func Load(ctx context.Context, path string) (*Document, error) {
	docType, err := DetectType(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	log := slog.Default().With("component", "loader", "path", path)
	log.Debug("loading document", "type", docType)

	doc := &Document{Source: path, Type: docType}
	switch docType {
	case TypeText:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		doc.Text = string(data)
	case TypeMarkdown:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		doc.Text = extractMarkdown(data)
	case TypePDF:
		text, pages, err := extractPDF(ctx, path)
		if err != nil {
			return nil, err
		}
		doc.Text, doc.Pages = text, pages
	default:
		text, err := extractOffice(path)
		if err != nil {
			return nil, err
		}
		doc.Text = text
	}

	if !utf8.ValidString(doc.Text) {
		doc.Text = strings.ToValidUTF8(doc.Text, "�")
	}
	doc.Hash = hashText(doc.Text)

	log.Debug("document loaded", "characters", doc.Characters(), "pages", doc.Pages)
	return doc, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
