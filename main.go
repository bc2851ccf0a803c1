// =============================================================================
// Loyverse Export - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Loyverse Export CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   loyverse-export export        - Run one full export (API -> xlsx workbook)
//   loyverse-export schedule      - Run the export on a recurring interval
//   loyverse-export version       - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/loyverse-export/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
