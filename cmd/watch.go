package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"parking-console/internal/logger"
	"parking-console/internal/poller"
)

var watchViews []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the dashboard refreshed until interrupted",
	Long: `Starts one poll loop per view and redraws the dashboard every poll interval.
A failed poll keeps the last good data on screen and is reported below it.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)
		log := logger.WithComponent("watch")

		views := watchViews
		if len(views) == 0 {
			views = []string{poller.ViewDashboard, poller.ViewOccupancy, poller.ViewFeeds}
			if c.sheet != nil {
				views = append(views, poller.ViewRecords)
			}
		}

		if err := c.sync.Start(ctx, views...); err != nil {
			c.sync.Stop()
			fmt.Printf("Error starting poll loops: %v\n", err)
			os.Exit(1)
		}
		defer c.sync.Stop()

		log.Info().Strs("views", c.sync.Running()).Msg("Watching")

		redraw := c.settings.PollInterval
		if redraw <= 0 {
			redraw = poller.DefaultInterval
		}
		ticker := time.NewTicker(redraw)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				fmt.Println("\nStopped.")
				return
			case <-ticker.C:
				if jsonOutput {
					printJSON(takeSnapshot(c.view, views))
					continue
				}
				// Clear screen and home the cursor.
				fmt.Print("\033[H\033[2J")
				fmt.Printf("parking-console  %s  (Ctrl+C to stop)\n\n", time.Now().Format(time.DateTime))
				renderDashboard(os.Stdout, c.view, views)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringSliceVar(&watchViews, "views", nil, "Views to poll (feeds, config, stats, occupancy, dashboard, records)")
}
