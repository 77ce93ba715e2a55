// Package generator orchestrates the content-to-entry pipeline: it assigns
// a day number, normalizes the source material, generates the entry body
// with the LLM, and derives a title and excerpt from the result.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/jihokim/knowlog/internal/content"
	"github.com/jihokim/knowlog/internal/llm"
	"github.com/jihokim/knowlog/internal/prompts"
)

const (
	// titleContextLimit bounds how much of the generated body is fed back
	// to the model when deriving the title.
	titleContextLimit = 2000

	// excerptContextLimit bounds the body context for excerpt derivation.
	excerptContextLimit = 3000

	// excerptMaxLength is the hard cap on the returned excerpt.
	excerptMaxLength = 200

	// summaryContextLimit bounds the note context for SummarizeNote.
	summaryContextLimit = 2000

	// summaryMaxLength is the hard cap on the returned note summary.
	summaryMaxLength = 150

	promptsFile = "generation.json"
)

// SequenceStore reports the highest day number already persisted. A nil
// result means no entries exist yet.
type SequenceStore interface {
	MaxDayNumber(ctx context.Context) (*int, error)
}

// Normalizer converts a raw input into normalized plain text.
type Normalizer interface {
	Process(ctx context.Context, in content.Input) (string, error)
}

// Entry is the assembled result of a batch generation run.
type Entry struct {
	DayNumber int    `json:"day_number"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	Content   string `json:"content"`
}

// Generator runs the generation pipeline against one LLM client.
type Generator struct {
	client    llm.Client
	store     SequenceStore
	processor Normalizer
}

// New creates a Generator. The store may be nil, in which case day numbers
// start at 1 (useful for the CLI, which has no database).
func New(client llm.Client, store SequenceStore, processor Normalizer) *Generator {
	return &Generator{
		client:    client,
		store:     store,
		processor: processor,
	}
}

// NextDayNumber returns the day number the next entry will receive: one
// past the highest persisted number, or 1 when none exist. Concurrent
// invocations may observe the same value; uniqueness is enforced by the
// database on insert, not here.
func (g *Generator) NextDayNumber(ctx context.Context) (int, error) {
	if g.store == nil {
		return 1, nil
	}

	max, err := g.store.MaxDayNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to look up max day number: %w", err)
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// Stream runs the full pipeline and reports progress on the returned
// channel. Events arrive in a fixed order: day_number, zero or more
// content_chunk events, title, excerpt, then complete. Any failure emits a
// single error event instead of the remaining sequence. The channel is
// closed after the terminal event. Cancelling ctx stops the run; no
// terminal event is emitted in that case.
func (g *Generator) Stream(ctx context.Context, in content.Input) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		emit := func(e Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}
		fail := func(err error) {
			emit(ErrorEvent{Message: err.Error()})
		}

		day, err := g.NextDayNumber(ctx)
		if err != nil {
			fail(err)
			return
		}
		if !emit(DayNumberEvent{DayNumber: day}) {
			return
		}

		normalized, err := g.processor.Process(ctx, in)
		if err != nil {
			fail(err)
			return
		}

		stream, err := g.client.GenerateStream(ctx, entryPrompt(normalized), systemPrompt())
		if err != nil {
			fail(err)
			return
		}

		body, err := llm.Drain(ctx, stream, func(fragment string) {
			emit(ContentChunkEvent{Chunk: fragment})
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fail(err)
			return
		}

		title, err := g.deriveTitle(ctx, body)
		if err != nil {
			fail(err)
			return
		}
		if !emit(TitleEvent{Title: title}) {
			return
		}

		excerpt, err := g.deriveExcerpt(ctx, body)
		if err != nil {
			fail(err)
			return
		}
		if !emit(ExcerptEvent{Excerpt: excerpt}) {
			return
		}

		emit(CompleteEvent{
			Success:   true,
			DayNumber: day,
			Title:     title,
			Excerpt:   excerpt,
			Content:   body,
		})
	}()

	return events
}

// Generate runs the full pipeline without streaming and returns the
// assembled entry. It is all-or-nothing: any stage failure returns an
// error and no partial entry.
func (g *Generator) Generate(ctx context.Context, in content.Input) (*Entry, error) {
	day, err := g.NextDayNumber(ctx)
	if err != nil {
		return nil, err
	}

	normalized, err := g.processor.Process(ctx, in)
	if err != nil {
		return nil, err
	}

	result, err := g.client.Generate(ctx, entryPrompt(normalized), systemPrompt())
	if err != nil {
		return nil, err
	}
	body := result.Content

	title, err := g.deriveTitle(ctx, body)
	if err != nil {
		return nil, err
	}

	excerpt, err := g.deriveExcerpt(ctx, body)
	if err != nil {
		return nil, err
	}

	return &Entry{
		DayNumber: day,
		Title:     title,
		Excerpt:   excerpt,
		Content:   body,
	}, nil
}

// SummarizeNote produces a short summary of a book reading note, weighing
// the key takeaways. The result is capped at 150 characters.
func (g *Generator) SummarizeNote(ctx context.Context, noteContent string, keyTakeaways []string) (string, error) {
	takeaways := "none"
	if len(keyTakeaways) > 0 {
		lines := make([]string, len(keyTakeaways))
		for i, t := range keyTakeaways {
			lines[i] = "- " + t
		}
		takeaways = strings.Join(lines, "\n")
	}

	prompt := prompts.Format(prompts.MustGet(promptsFile, "note-summary"), map[string]string{
		"Content":      headRunes(noteContent, summaryContextLimit),
		"KeyTakeaways": takeaways,
	})

	result, err := g.client.Generate(ctx, prompt, "")
	if err != nil {
		return "", err
	}
	return headRunes(strings.TrimSpace(result.Content), summaryMaxLength), nil
}

func (g *Generator) deriveTitle(ctx context.Context, body string) (string, error) {
	prompt := prompts.Format(prompts.MustGet(promptsFile, "title"), map[string]string{
		"Content": headRunes(body, titleContextLimit),
	})

	result, err := g.client.Generate(ctx, prompt, "")
	if err != nil {
		return "", err
	}
	return llm.CleanTitle(result.Content), nil
}

func (g *Generator) deriveExcerpt(ctx context.Context, body string) (string, error) {
	prompt := prompts.Format(prompts.MustGet(promptsFile, "excerpt"), map[string]string{
		"Content": headRunes(body, excerptContextLimit),
	})

	result, err := g.client.Generate(ctx, prompt, "")
	if err != nil {
		return "", err
	}
	return headRunes(strings.TrimSpace(result.Content), excerptMaxLength), nil
}

func systemPrompt() string {
	return prompts.MustGet(promptsFile, "system")
}

func entryPrompt(normalized string) string {
	return prompts.Format(prompts.MustGet(promptsFile, "entry"), map[string]string{
		"Content": normalized,
	})
}

// headRunes returns the first n runes of s. Limits are character counts,
// not byte counts, so multibyte text is never split mid-rune.
func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
