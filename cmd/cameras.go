package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"parking-console/internal/poller"
	"parking-console/pkg/models"
)

// Variables to hold flag values
var (
	cameraID   int
	cameraType string
)

// Parent Command
var camerasCmd = &cobra.Command{
	Use:   "cameras",
	Short: "Inspect and control camera processing",
	Long:  `Show the camera configuration grouped by category, feed statistics, or start/stop processing of one feed.`,
}

// List Command
var camerasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List multicam and counter feeds as seen by the camera service",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)
		c.refresh(ctx, poller.ViewConfig)

		cfg := c.view.CameraConfig()

		// --- JSON OUTPUT ---
		if jsonOutput {
			printJSON(cfg)
			return
		}
		// -------------------

		fmt.Printf("Multicam feeds (%d)\n", len(cfg.MulticamFeeds))
		printFeeds(cfg.MulticamFeeds)
		fmt.Printf("\nCounter feeds (%d)\n", len(cfg.CounterFeeds))
		printFeeds(cfg.CounterFeeds)
		fmt.Printf("\nGlobal car count: %d\n", cfg.GlobalCarCount)
	},
}

var camerasStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show feed statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)
		c.refresh(ctx, poller.ViewStats)

		st := c.view.Stats()
		if jsonOutput {
			printJSON(st)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TOTAL\tACTIVE\tMULTICAM\tCOUNTER")
		fmt.Fprintln(w, "-----\t------\t--------\t-------")
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", st.TotalFeeds, st.ActiveFeeds, st.MulticamFeeds, st.CounterFeeds)
		w.Flush()
	},
}

// Toggle Command
var camerasToggleCmd = &cobra.Command{
	Use:     "toggle",
	Short:   "Start or stop processing of a feed",
	Example: `  parking-console cameras toggle --id 2 --type counter`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)

		fmt.Printf("Toggling %s feed %d ...\n", cameraType, cameraID)

		feed, err := c.coord.ToggleCamera(ctx, cameraID, models.FeedType(cameraType))
		exitOnError("toggling camera", err)

		report(feed, "Feed %d is now %s.\n", feed.ID, feed.Status)
	},
}

func init() {
	// Register Parent
	rootCmd.AddCommand(camerasCmd)

	// Register Subcommands
	camerasCmd.AddCommand(camerasListCmd)
	camerasCmd.AddCommand(camerasStatsCmd)
	camerasCmd.AddCommand(camerasToggleCmd)

	// Flags for Toggle
	camerasToggleCmd.Flags().IntVar(&cameraID, "id", 0, "ID of the feed")
	camerasToggleCmd.Flags().StringVar(&cameraType, "type", string(models.FeedMulticam), "Feed type: multicam or counter")
	_ = camerasToggleCmd.MarkFlagRequired("id")
}
