package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-finder/internal/keepalive"
	"github.com/jonathan/job-finder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes POST /search-jobs for running searches.`,
	RunE:  runServe,
}

var (
	serveConfigPath string
	servePort       int
	serveUseBrowser bool
	serveVerbose    bool
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT env var or 8000)")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Use headless browser for JS-rendered pages (requires Chrome)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = serveUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = serveVerbose
	}

	logger := newLogger(cfg.Verbose)

	orchestrator, cleanup, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer cleanup()

	pinger := keepalive.New(cfg.ServiceURL, time.Duration(cfg.KeepAliveMins)*time.Minute, logger)
	if err := pinger.Start(); err != nil {
		return fmt.Errorf("failed to start keep-alive: %w", err)
	}
	defer pinger.Stop()

	srv := server.New(orchestrator, server.Config{
		Port:   cfg.Port,
		Logger: logger,
	})
	return srv.Start()
}
