package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// MaxFileSize is the upload size bound in bytes (10 MiB).
const MaxFileSize = 10 * 1024 * 1024

// supportedExtensions lists the upload types accepted by the pipeline.
var supportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".mdx":      true,
}

// SupportsFile reports whether the filename carries a supported extension.
func SupportsFile(filename string) bool {
	if filename == "" {
		return false
	}
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SupportedExtensions returns the accepted extensions for error messages.
func SupportedExtensions() []string {
	return []string{".md", ".markdown", ".txt", ".mdx"}
}

// ExtractFile decodes an uploaded document to plain text. The extension
// allow-list is enforced by the caller before invocation; this enforces the
// size bound and decoding. Decoding tries UTF-8 first and falls back to
// Latin-1 for legacy single-byte files. No content transformation beyond
// decoding is applied.
func ExtractFile(filename string, data []byte) (*Content, error) {
	if filename == "" {
		return nil, &ValidationError{Message: "filename is missing"}
	}
	if len(data) > MaxFileSize {
		return nil, &ValidationError{
			Message: fmt.Sprintf("file size exceeds %dMB limit", MaxFileSize/1024/1024),
		}
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, &ValidationError{Message: "file could not be decoded", Cause: err}
	}

	return &Content{
		Text:   text,
		Origin: filename,
	}, nil
}

// decodeText interprets raw bytes as UTF-8 when valid, otherwise Latin-1.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
