package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jihokim/knowlog/internal/config"
	"github.com/jihokim/knowlog/internal/llm"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the generation provider",
	Long:  `Send a minimal generation request to verify the API key and provider availability.`,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
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

	if !client.HealthCheck(ctx) {
		return fmt.Errorf("provider health check failed for model %s", llmConfig.Model)
	}

	fmt.Printf("Provider OK (%s)\n", llmConfig.Model)
	return nil
}
