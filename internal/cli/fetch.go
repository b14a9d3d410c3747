package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openpermits/permitdash/internal/arcgis"
	"github.com/openpermits/permitdash/internal/filter"
	"github.com/openpermits/permitdash/internal/model"
	"github.com/openpermits/permitdash/internal/session"
)

var (
	startDate  string
	endDate    string
	permTypes  []string
	activities []string
	textQuery  string
	outPath    string
	endpoint   string
	pageSize   int
	maxPages   int
	timeout    time.Duration
	userAgent  string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and filter permits, writing them as JSON",
	Long: `Fetch queries the feature service for every permit issued within the
date range, applies the local filters, and writes the matching records
as JSON.

The end date defaults to today when omitted.

Example:
  permitdash fetch --start 2024-01-01 --end 2024-03-31
  permitdash fetch --start 2024-01-01 --type Residential --text roof
  permitdash fetch --start 2024-01-01 --out permits.json`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD, required)")
	fetchCmd.Flags().StringVar(&endDate, "end", "", "end date (YYYY-MM-DD, default: today)")
	_ = fetchCmd.MarkFlagRequired("start")

	// Local filters
	fetchCmd.Flags().StringSliceVar(&permTypes, "type", nil, "permit types to keep (repeatable)")
	fetchCmd.Flags().StringSliceVar(&activities, "activity", nil, "activities to keep (repeatable)")
	fetchCmd.Flags().StringVar(&textQuery, "text", "", "case-insensitive text to match in description or comments")

	// Output
	fetchCmd.Flags().StringVar(&outPath, "out", "", "output path (default: stdout)")

	// Endpoint overrides
	fetchCmd.Flags().StringVar(&endpoint, "url", "", "feature-query endpoint URL override")
	fetchCmd.Flags().IntVar(&pageSize, "page-size", 0, "records per page override")
	fetchCmd.Flags().IntVar(&maxPages, "max-pages", 0, "page budget override")
	fetchCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall fetch timeout")
	fetchCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
}

// buildConfig assembles the effective configuration from defaults and
// flag overrides.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	if endpoint != "" {
		cfg.Endpoint.URL = endpoint
	}
	if pageSize > 0 {
		cfg.Endpoint.PageSize = pageSize
	}
	if maxPages > 0 {
		cfg.Endpoint.MaxPages = maxPages
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	cfg.HTTP.Timeout = timeout
	return cfg
}

func parseDateRange() (model.DateRange, error) {
	var dateRange model.DateRange
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return dateRange, fmt.Errorf("parse --start: %w", err)
	}
	dateRange.Start = start
	if endDate != "" {
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return dateRange, fmt.Errorf("parse --end: %w", err)
		}
		dateRange.End = end
	}
	return dateRange, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	dateRange, err := parseDateRange()
	if err != nil {
		return err
	}

	cfg := buildConfig()
	// A one-shot command gains nothing from memoization.
	cfg.Cache.Enabled = false

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Timeout)
	defer cancel()

	ses := session.New(cfg, arcgis.NewClient(cfg.Endpoint, cfg.HTTP), nil)
	ses.SetDateRange(dateRange)
	ses.SetPredicates(filter.Predicates{
		Types:      permTypes,
		Activities: activities,
		Text:       textQuery,
	})

	if verbose {
		fmt.Fprintf(os.Stderr, "Querying: %s\n", cfg.Endpoint.URL)
	}
	if err := ses.Refresh(ctx); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d matching permits\n", ses.MatchCount())
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ses.Filtered()); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
