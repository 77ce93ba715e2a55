// Package main provides the entry point for the knowlog generation service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "knowlog",
	Short: "Learning-log entry generation service",
	Long:  "knowlog turns pasted text, web pages and uploaded notes into daily learning-log entries with an LLM, as a CLI or an HTTP API with streaming progress.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
