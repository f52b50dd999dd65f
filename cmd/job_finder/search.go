package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-finder/internal/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search job postings across all sources and print ranked results",
	Long: `Fetches postings from LinkedIn, Google Jobs and Indeed, deduplicates them and
prints them ranked by relevance as JSON.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runSearch,
}

var (
	searchConfigPath string
	searchPosition   string
	searchLocation   string
	searchExperience string
	searchSalary     string
	searchJobNature  string
	searchSkills     []string
	searchExclude    []string
	searchLimit      int
	searchUseBrowser bool
	searchVerbose    bool
)

func init() {
	searchCmd.Flags().StringVar(&searchConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	searchCmd.Flags().StringVarP(&searchPosition, "position", "p", "", "Job title to search for (required)")
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "Preferred location")
	searchCmd.Flags().StringVar(&searchExperience, "experience", "", "Required experience, e.g. \"2 years\"")
	searchCmd.Flags().StringVar(&searchSalary, "salary", "", "Expected salary range")
	searchCmd.Flags().StringVar(&searchJobNature, "job-nature", "", "remote, onsite or hybrid")
	searchCmd.Flags().StringSliceVar(&searchSkills, "skills", nil, "Skills to match (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchExclude, "exclude", nil, "Terms that disqualify a posting (repeatable)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results to return")
	searchCmd.Flags().BoolVar(&searchUseBrowser, "use-browser", false, "Use headless browser for JS-rendered pages (requires Chrome)")
	searchCmd.Flags().BoolVarP(&searchVerbose, "verbose", "v", false, "Print detailed debug information")

	_ = searchCmd.MarkFlagRequired("position")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(searchConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = searchUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = searchVerbose
	}

	logger := newLogger(cfg.Verbose)

	orchestrator, cleanup, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer cleanup()

	criteria := types.SearchCriteria{
		Position:   searchPosition,
		Location:   searchLocation,
		Experience: searchExperience,
		Salary:     searchSalary,
		JobNature:  searchJobNature,
		Skills:     searchSkills,
		Exclude:    searchExclude,
		Limit:      searchLimit,
	}

	result, err := orchestrator.Search(ctx, criteria)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
