// =============================================================================
// Loyverse Export - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'export', 'schedule') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (loyverse-export)
//   ├── exportCmd (loyverse-export export)
//   ├── scheduleCmd (loyverse-export schedule)
//   └── versionCmd (loyverse-export version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "loyverse-export",
	Short: "Loyverse Export - Extract POS data into a multi-sheet xlsx report",
	Long: `Loyverse Export is a CLI tool that pulls receipts and shifts from the
Loyverse point-of-sale API, flattens the nested payment and line-item data
into tabular form, computes sign-adjusted sales aggregates, and writes a
multi-sheet Excel workbook.

Sheets produced:
  - shifts           : Raw cash-register shifts
  - receipt_payments : One row per receipt payment, with per-type totals
  - Summary          : Payment totals, daily sales, paid-out, top items,
                       and headline sales metrics side by side
  - receipt_items    : One row per receipt line item

Configuration comes from an optional config.yaml plus the environment:
the LOYVERSE_API_TOKEN variable (a .env file is honored) supplies the
API bearer token.

Example Usage:
  loyverse-export export                     # Run one export
  loyverse-export export --dry-run           # Fetch and aggregate only
  loyverse-export schedule --every 24h       # Export once a day`,

	// If no subcommand is provided, print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (missing file falls back to defaults)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
