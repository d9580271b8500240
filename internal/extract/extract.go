package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupportedFormat is returned for files that are not PDF, DOCX or plain text.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format identifies a supported résumé file type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// Extractor adapts the package functions to callers that want an injectable dependency.
type Extractor struct{}

// Extract pulls plain text from an in-memory file.
func (Extractor) Extract(ctx context.Context, data []byte, formatHint string) (string, error) {
	return Bytes(ctx, data, formatHint)
}

// DetectFormat maps a file name, extension or MIME type to a supported format.
func DetectFormat(hint string) (Format, error) {
	clean := strings.ToLower(strings.TrimSpace(hint))
	switch strings.TrimSpace(strings.Split(clean, ";")[0]) {
	case mimePDF:
		return FormatPDF, nil
	case mimeDOCX:
		return FormatDOCX, nil
	case mimeText:
		return FormatText, nil
	}

	ext := filepath.Ext(clean)
	if ext == "" && clean != "" && !strings.ContainsAny(clean, "./\\") {
		ext = "." + clean
	}
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, hint)
	}
}

// File extracts text from a file on disk. An empty hint falls back to the path's extension.
func File(ctx context.Context, path string, formatHint string) (string, error) {
	if strings.TrimSpace(formatHint) == "" {
		formatHint = path
	}
	if _, err := DetectFormat(formatHint); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extract text path=%s: %w", path, err)
	}
	return Bytes(ctx, data, formatHint)
}

// Bytes extracts text from an in-memory payload.
func Bytes(ctx context.Context, data []byte, formatHint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	format, err := DetectFormat(formatHint)
	if err != nil {
		return "", err
	}
	switch format {
	case FormatPDF:
		return extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	default:
		return extractText(data), nil
	}
}

func extractText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(data)
}

func extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plain text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	if !isWordDocument(data) {
		return "", fmt.Errorf("%w: not a word document", ErrUnsupportedFormat)
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent()), nil
}

// stripDocxXML keeps character data and turns paragraph and line breaks into newlines.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func isWordDocument(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
