package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jihokim/knowlog/internal/config"
	"github.com/jihokim/knowlog/internal/content"
	"github.com/jihokim/knowlog/internal/db"
	"github.com/jihokim/knowlog/internal/generator"
	"github.com/jihokim/knowlog/internal/llm"
	"github.com/jihokim/knowlog/internal/observability"
)

var (
	generateText   string
	generateURL    string
	generateFile   string
	generateJSON   bool
	generateStream bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a learning-log entry from text, a URL or a file",
	Long: `Run the generation pipeline once and print the assembled entry.
Exactly one of --text, --url or --file must be given. With DATABASE_URL
set, the day number continues the persisted sequence; otherwise it is 1.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateText, "text", "", "Source text to generate from")
	generateCmd.Flags().StringVar(&generateURL, "url", "", "Web page to generate from")
	generateCmd.Flags().StringVar(&generateFile, "file", "", "Markdown or text file to generate from")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print the entry as JSON")
	generateCmd.Flags().BoolVar(&generateStream, "stream", false, "Print the entry as it is generated")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	in, err := resolveInput()
	if err != nil {
		return err
	}

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()

	llmConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		llmConfig = llmConfig.WithModel(cfg.Model)
	}
	client, err := llm.NewClient(ctx, llmConfig, cfg.GeminiAPIKey)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	var store generator.SequenceStore
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		store = database
	}

	gen := generator.New(client, store, content.NewProcessor(cfg.UseBrowser))

	if generateStream {
		printer := observability.NewPrinter(os.Stdout)
		var failed bool
		for event := range gen.Stream(ctx, in) {
			printer.PrintEvent(event)
			if _, ok := event.(generator.ErrorEvent); ok {
				failed = true
			}
		}
		if failed {
			return fmt.Errorf("generation failed")
		}
		return nil
	}

	entry, err := gen.Generate(ctx, in)
	if err != nil {
		return err
	}

	if generateJSON {
		return json.NewEncoder(os.Stdout).Encode(entry)
	}

	fmt.Printf("Day %d: %s\n\n", entry.DayNumber, entry.Title)
	fmt.Printf("%s\n\n", entry.Excerpt)
	fmt.Println(entry.Content)
	return nil
}

// resolveInput maps the mutually exclusive source flags to a pipeline
// input.
func resolveInput() (content.Input, error) {
	given := 0
	for _, v := range []string{generateText, generateURL, generateFile} {
		if v != "" {
			given++
		}
	}
	if given != 1 {
		return content.Input{}, fmt.Errorf("exactly one of --text, --url or --file is required")
	}

	switch {
	case generateText != "":
		return content.Input{Type: content.TypeText, Content: generateText}, nil
	case generateURL != "":
		return content.Input{Type: content.TypeURL, Content: generateURL}, nil
	default:
		data, err := os.ReadFile(generateFile)
		if err != nil {
			return content.Input{}, fmt.Errorf("failed to read %s: %w", generateFile, err)
		}
		return content.Input{
			Type: content.TypeFile,
			File: &content.FileUpload{Name: filepath.Base(generateFile), Data: data},
		}, nil
	}
}
