// =============================================================================
// Loyverse Export - Export Command
// =============================================================================
//
// This file defines the 'export' command, which runs one full export:
// fetch -> flatten -> aggregate -> write workbook.
//
// COMMAND USAGE:
//   loyverse-export export [flags]
//
// FLAGS:
//   --dry-run      : Fetch and aggregate without writing the workbook
//   --output-dir   : Override the configured output directory
//
// The run is strictly sequential: one request in flight at a time, each
// pipeline stage completing before the next starts. This is a batch export,
// not a latency-sensitive service.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/loyverse-export/internal/config"
	"github.com/ginjaninja78/loyverse-export/internal/exporter"
	"github.com/ginjaninja78/loyverse-export/internal/loyverse"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun fetches and aggregates without writing the workbook.
var dryRun bool

// outputDir overrides the configured output directory when non-empty.
var outputDir string

// =============================================================================
// EXPORT COMMAND DEFINITION
// =============================================================================

// exportCmd represents the 'export' command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run one full export from the Loyverse API to an xlsx workbook",
	Long: `The export command fetches receipts and shifts from the Loyverse API
(following cursor pagination to the end of each endpoint), flattens the
nested payment and line-item collections, computes sign-adjusted aggregates,
and writes everything to a timestamped multi-sheet xlsx workbook.

Endpoint failures are not fatal: whatever was fetched before a failure is
still exported. The run only fails when no endpoint returned any data, or
when the workbook cannot be written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the export command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Fetch and aggregate without writing the workbook",
	)

	exportCmd.Flags().StringVar(
		&outputDir,
		"output-dir",
		"",
		"Directory for the generated workbook (overrides the config file)",
	)
}

// =============================================================================
// MAIN EXPORT FUNCTION
// =============================================================================

// runExport loads the configuration, wires the pipeline, and runs it once.
func runExport(ctx context.Context) error {
	exp, err := buildExporter()
	if err != nil {
		return err
	}

	result := exp.Run(ctx)
	printRunSummary(result)

	if !result.Success {
		return fmt.Errorf("export failed: %w", result.Error)
	}
	return nil
}

// buildExporter assembles a ready-to-run exporter from the configuration
// and flags. Shared with the schedule command.
func buildExporter() (*exporter.Exporter, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}

	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	logger := exporter.NewDefaultLogger(verbose)
	client := loyverse.NewClient(
		cfg.APIBaseURL,
		cfg.APIToken,
		loyverse.WithTimeout(time.Duration(cfg.RequestTimeoutSeconds)*time.Second),
		loyverse.WithLogger(logger),
	)

	return exporter.New(
		cfg,
		client,
		exporter.WithLogger(logger),
		exporter.WithDryRun(dryRun),
	), nil
}

// printRunSummary prints the end-of-run statistics.
func printRunSummary(result exporter.Result) {
	fmt.Println("\n=== Export Complete ===")
	fmt.Printf("Receipts:        %d\n", result.Stats.Receipts)
	fmt.Printf("Shifts:          %d\n", result.Stats.Shifts)
	fmt.Printf("Payment rows:    %d\n", result.Stats.PaymentRows)
	fmt.Printf("Line-item rows:  %d\n", result.Stats.LineItemRows)
	fmt.Printf("Sheets:          %d\n", result.Stats.Sheets)
	fmt.Printf("Time elapsed:    %s\n", result.Stats.ProcessingTime)
	if result.OutputFile != "" {
		fmt.Printf("Output file:     %s\n", result.OutputFile)
	}
}
