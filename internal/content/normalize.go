// Package content normalizes heterogeneous pipeline input (pasted text, a
// web URL, or an uploaded document) into a single prompt-ready string.
package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/jihokim/knowlog/internal/extract"
)

// MaxContentLength is the hard cap, in characters, applied to normalized
// text of every input kind. It bounds provider cost and latency, not any
// natural document boundary, so truncation may cut mid-sentence.
const MaxContentLength = 50000

// TruncationNotice is appended exactly once when normalized text is cut.
const TruncationNotice = "\n\n[Content truncated due to length...]"

// InputType declares the shape of the raw input.
type InputType string

// Accepted input types.
const (
	TypeText InputType = "text"
	TypeURL  InputType = "url"
	TypeFile InputType = "file"
)

// FileUpload carries an uploaded document.
type FileUpload struct {
	Name string
	Data []byte
}

// Input is the pipeline input; exactly one payload is populated per
// invocation, matching Type.
type Input struct {
	Type    InputType
	Content string      // text body or URL
	File    *FileUpload // only for TypeFile
}

// InvalidInputError indicates the input variant carries no usable payload.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// urlExtractor fetches and reduces a web page to readable text.
type urlExtractor interface {
	Extract(ctx context.Context, url string) (*extract.Content, error)
}

// Processor routes input to the matching extractor, attaches provenance and
// enforces the length cap.
type Processor struct {
	urls urlExtractor
}

// NewProcessor creates a Processor with the default URL extractor.
func NewProcessor(useBrowser bool) *Processor {
	return &Processor{urls: &extract.URLExtractor{UseBrowser: useBrowser}}
}

// NewProcessorWith creates a Processor with a custom URL extractor.
func NewProcessorWith(urls urlExtractor) *Processor {
	return &Processor{urls: urls}
}

// Process normalizes the input into prompt text. URL and file inputs are
// prefixed with a provenance header so downstream generation can cite its
// source; plain text passes through untouched.
func (p *Processor) Process(ctx context.Context, in Input) (string, error) {
	var text string

	switch {
	case in.Type == TypeText && in.Content != "":
		text = in.Content

	case in.Type == TypeURL && in.Content != "":
		extracted, err := p.urls.Extract(ctx, in.Content)
		if err != nil {
			return "", err
		}
		text = extracted.Text
		if extracted.Title != "" {
			text = fmt.Sprintf("Source Title: %s\nSource URL: %s\n\n%s",
				extracted.Title, extracted.Origin, text)
		}

	case in.Type == TypeFile && in.File != nil:
		if !extract.SupportsFile(in.File.Name) {
			return "", &extract.ValidationError{
				Message: fmt.Sprintf("unsupported file type; supported: %s",
					strings.Join(extract.SupportedExtensions(), ", ")),
			}
		}
		extracted, err := extract.ExtractFile(in.File.Name, in.File.Data)
		if err != nil {
			return "", err
		}
		text = fmt.Sprintf("Source File: %s\n\n%s", extracted.Origin, extracted.Text)

	default:
		return "", &InvalidInputError{Message: "input carries no payload for its declared type"}
	}

	return truncate(text), nil
}

// truncate enforces MaxContentLength in characters, deterministically.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxContentLength {
		return text
	}
	return string(runes[:MaxContentLength]) + TruncationNotice
}
