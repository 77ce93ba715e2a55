package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jihokim/knowlog/internal/config"
	"github.com/jihokim/knowlog/internal/server"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the generation endpoints with SSE streaming progress.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.FromEnv()
	if servePort != "" {
		cfg.Port = servePort
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	srv, err := server.New(cmd.Context(), server.Config{
		Port:         cfg.Port,
		DatabaseURL:  cfg.DatabaseURL,
		AdminAPIKey:  cfg.AdminAPIKey,
		GeminiAPIKey: cfg.GeminiAPIKey,
		Model:        cfg.Model,
		UseBrowser:   cfg.UseBrowser,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
