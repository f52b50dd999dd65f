// Package main provides the entry point for the job finder CLI and HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_finder",
	Short: "Job posting aggregation and relevance filtering",
	Long:  "Job Finder aggregates postings from LinkedIn, Google Jobs and Indeed, deduplicates them and ranks them by relevance using AI scoring with a deterministic keyword fallback.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
