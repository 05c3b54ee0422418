package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vrsandeep/noor-go/internal/core"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/offline"
)

// withApp opens the application, runs fn and closes it again. The context
// is cancelled on SIGINT or SIGTERM so a running prefetch stops cleanly.
func withApp(fn func(ctx context.Context, app *core.App) error) error {
	app, err := core.New()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, app)
}

func printProgress(p int) {
	fmt.Printf("\rDownloading offline data... %3d%%", p)
	if p == 100 {
		fmt.Println()
	}
}

func printReport(report *offline.PrefetchReport, err error) error {
	var partial *models.PartialPrefetchError
	switch {
	case errors.As(err, &partial):
		fmt.Printf("Finished with %d of %d items failed. Run the command again to retry.\n", partial.Failed, partial.Total)
		for _, e := range partial.Errors {
			fmt.Printf("  - %v\n", e)
		}
		return err
	case err != nil:
		return fmt.Errorf("prefetch failed: %w", err)
	}
	fmt.Printf("Downloaded %d verses and %d hadiths in %s.\n", report.Verses, report.Hadiths, report.Duration.Round(time.Millisecond))
	return nil
}

func newPrefetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch",
		Short: "Download the whole Quran and the configured hadith collections for offline use",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *core.App) error {
				return printReport(app.Offline().PrefetchAll(ctx, printProgress))
			})
		},
	}
}

func newRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Clear the offline data and download it again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *core.App) error {
				return printReport(app.Offline().Refresh(ctx, printProgress))
			})
		},
	}
}

func newStatusCommand() *cobra.Command {
	var asJSON bool

	command := &cobra.Command{
		Use:   "status",
		Short: "Show whether offline data is available",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *core.App) error {
				status := app.Offline().Status(ctx)
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(status)
				}
				fmt.Printf("State:    %s\n", status.State)
				fmt.Printf("Progress: %d%%\n", status.Percent)
				if status.Message != "" {
					fmt.Printf("Message:  %s\n", status.Message)
				}
				if status.Failed > 0 {
					fmt.Printf("Failed:   %d\n", status.Failed)
				}
				if !app.Store().Available() {
					fmt.Println("Storage:  unavailable")
				} else {
					fmt.Printf("Stored:   %d verses, %d hadiths\n",
						app.Store().Count(ctx, models.KindVerse), app.Store().Count(ctx, models.KindHadith))
				}
				return nil
			})
		},
	}
	command.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	return command
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all downloaded offline data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *core.App) error {
				if err := app.Offline().ClearAll(ctx); err != nil {
					return fmt.Errorf("failed to clear offline data: %w", err)
				}
				fmt.Println("Offline data cleared.")
				return nil
			})
		},
	}
}
