// Package observability provides formatted terminal output for streaming
// generation runs.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jihokim/knowlog/internal/generator"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer renders pipeline progress events for a terminal.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// PrintEvent renders one progress event. Content chunks are written raw so
// the body appears as it streams; the other events get labeled lines and
// the terminal events a summary box.
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) PrintEvent(e generator.Event) {
	switch event := e.(type) {
	case generator.DayNumberEvent:
		fmt.Fprintf(p.out, "Day %d\n\n", event.DayNumber)
	case generator.ContentChunkEvent:
		fmt.Fprint(p.out, event.Chunk)
	case generator.TitleEvent:
		fmt.Fprintf(p.out, "\n\nTitle:   %s\n", event.Title)
	case generator.ExcerptEvent:
		fmt.Fprintf(p.out, "Excerpt: %s\n", event.Excerpt)
	case generator.CompleteEvent:
		p.printBox("Entry complete", fmt.Sprintf("Day %d: %s", event.DayNumber, event.Title))
	case generator.ErrorEvent:
		p.printBox("Generation failed", event.Message)
	}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}
