// =============================================================================
// Loyverse Export - Schedule Command
// =============================================================================
//
// This file defines the 'schedule' command, which runs the export on a
// recurring interval until interrupted. Useful for unattended daily or
// hourly report generation without an external cron entry.
//
// COMMAND USAGE:
//   loyverse-export schedule --every 24h
//
// Jobs run in singleton mode: if an export is still running when the next
// tick arrives, the tick is skipped rather than overlapped — the pipeline
// is strictly sequential.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// every is the interval between export runs.
var every time.Duration

// =============================================================================
// SCHEDULE COMMAND DEFINITION
// =============================================================================

// scheduleCmd represents the 'schedule' command.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the export on a recurring interval",
	Long: `The schedule command runs a full export immediately and then again on a
fixed interval until the process is interrupted (Ctrl-C or SIGTERM).

Each run is independent: a failed run (for example when the API is
unreachable) is logged and the schedule continues.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchedule()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the schedule command with the root command and sets up
// flags.
func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().DurationVar(
		&every,
		"every",
		24*time.Hour,
		"Interval between export runs (e.g. 30m, 6h, 24h)",
	)
}

// =============================================================================
// MAIN SCHEDULE FUNCTION
// =============================================================================

// runSchedule starts the recurring export and blocks until interrupted.
func runSchedule() error {
	if every <= 0 {
		return fmt.Errorf("--every must be a positive duration, got %s", every)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(runScheduledExport),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to register export job: %w", err)
	}

	scheduler.Start()
	fmt.Printf("Scheduled export every %s. Press Ctrl-C to stop.\n", every)

	// Block until interrupted.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	fmt.Println("\nShutting down scheduler...")
	return scheduler.Shutdown()
}

// runScheduledExport runs one export, logging rather than propagating
// failures so the schedule keeps going.
func runScheduledExport() {
	exp, err := buildExporter()
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		return
	}

	result := exp.Run(context.Background())
	if !result.Success {
		fmt.Printf("[ERROR] scheduled export failed: %v\n", result.Error)
	}
}
