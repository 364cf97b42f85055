package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"parking-console/internal/coordinator"
	"parking-console/internal/poller"
	"parking-console/pkg/models"
)

// Variables to hold flag values
var (
	feedID        int
	feedName      string
	feedURL       string
	feedType      string
	feedStatus    string
	feedTotal     string
	feedAvailable string
	feedCount     string
)

// Parent Command
var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Manage camera and counter feeds",
	Long:  `List, add, edit, enable/disable and remove feed configurations.`,
}

// List Command
var feedsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured feeds",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)
		c.refresh(ctx, poller.ViewFeeds)

		feeds := c.view.Feeds()

		if jsonOutput {
			printJSON(models.FeedListResponse{Feeds: feeds, GlobalCarCount: c.view.GlobalCount()})
			return
		}

		if len(feeds) == 0 {
			fmt.Println("No feeds configured.")
			return
		}

		printFeeds(feeds)
		fmt.Printf("\nGlobal car count: %d\n", c.view.GlobalCount())
	},
}

var feedsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new feed",
	Example: `  parking-console feeds add --name "Gate A" --url rtsp://10.0.0.7/stream --total-slots 40 --available-slots 40
  parking-console feeds add --name "Entry" --url rtsp://10.0.0.8/stream --type counter`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)

		draft := models.FeedDraft{
			Name:   feedName,
			URL:    feedURL,
			Type:   models.FeedType(feedType),
			Status: models.FeedStatus(feedStatus),
		}
		draft.TotalSlots, draft.AvailableSlots = slotFlags(cmd)

		feed, err := c.coord.Add(ctx, draft)
		exitOnError("adding feed", err)

		report(feed, "Feed %d (%s) added.\n", feed.ID, feed.Name)
	},
}

var feedsEditCmd = &cobra.Command{
	Use:     "edit",
	Short:   "Edit an existing feed",
	Long:    `Only the flags given are changed. The feed category cannot be changed.`,
	Example: `  parking-console feeds edit --id 3 --available-slots 12`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)
		current := mustFeed(ctx, c, feedID)

		flags := cmd.Flags()
		if flags.Changed("name") {
			current.Name = feedName
		}
		if flags.Changed("url") {
			current.URL = feedURL
		}
		if flags.Changed("type") {
			current.Type = models.FeedType(feedType)
		}
		if flags.Changed("status") {
			current.Status = models.FeedStatus(feedStatus)
		}
		total, available := slotFlags(cmd)
		if total != nil {
			current.TotalSlots = total
		}
		if available != nil {
			current.AvailableSlots = available
		}

		feed, err := c.coord.Edit(ctx, current)
		exitOnError("editing feed", err)

		report(feed, "Feed %d updated.\n", feed.ID)
	},
}

// Delete Command
var feedsDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete a feed by ID",
	Example: `  parking-console feeds delete --id 3`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)

		fmt.Printf("Deleting feed ID: %d ...\n", feedID)

		exitOnError("deleting feed", c.coord.Delete(ctx, feedID))
		fmt.Println("Feed deleted successfully.")
	},
}

var feedsToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip a feed between active and inactive",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)
		c.refresh(ctx, poller.ViewFeeds)

		feed, err := c.coord.ToggleStatus(ctx, feedID)
		exitOnError("toggling feed", err)

		report(feed, "Feed %d is now %s.\n", feed.ID, feed.Status)
	},
}

var feedsInitialCountCmd = &cobra.Command{
	Use:   "initial-count",
	Short: "Set the starting count of a counter feed",
	Long:  `Non-numeric or negative values are treated as 0.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)
		c.refresh(ctx, poller.ViewFeeds)

		exitOnError("setting initial count", c.coord.SetInitialCount(ctx, feedID, coordinator.ParseCount(feedCount)))

		feed, _ := c.view.Feed(feedID)
		report(feed, "Initial count of feed %d set to %s.\n", feedID, countString(feed.InitialCount))
	},
}

var globalCountCmd = &cobra.Command{
	Use:   "global-count",
	Short: "Overwrite the global car count",
	Long:  `Non-numeric or negative values are treated as 0.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)

		count := coordinator.ParseCount(feedCount)
		exitOnError("setting global count", c.coord.SetGlobalCount(ctx, count))

		fmt.Printf("Global car count set to %d.\n", c.view.GlobalCount())
	},
}

func bindSlotFlags(c *cobra.Command) {
	c.Flags().StringVar(&feedTotal, "total-slots", "0", "Total parking slots (multicam only)")
	c.Flags().StringVar(&feedAvailable, "available-slots", "0", "Available parking slots (multicam only)")
}

// slotFlags returns the slot flags that were given, nil for the others.
// Like the count flags, non-numeric or negative input becomes 0.
func slotFlags(cmd *cobra.Command) (total, available *int) {
	if cmd.Flags().Changed("total-slots") {
		total = models.IntPtr(coordinator.ParseCount(feedTotal))
	}
	if cmd.Flags().Changed("available-slots") {
		available = models.IntPtr(coordinator.ParseCount(feedAvailable))
	}
	return total, available
}

// mustFeed loads the feed list and returns the feed with id, exiting when absent.
func mustFeed(ctx context.Context, c *console, id int) models.Feed {
	c.refresh(ctx, poller.ViewFeeds)
	feed, ok := c.view.Feed(id)
	if !ok {
		fmt.Printf("Error: %v: %d\n", coordinator.ErrFeedNotFound, id)
		os.Exit(1)
	}
	return feed
}

func report(feed models.Feed, format string, args ...interface{}) {
	if jsonOutput {
		printJSON(feed)
		return
	}
	fmt.Printf(format, args...)
}

func printFeeds(feeds []models.Feed) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tSLOTS\tCOUNT\tURL")
	fmt.Fprintln(w, "--\t----\t----\t------\t-----\t-----\t---")

	for _, f := range feeds {
		slots := "-"
		if f.Type != models.FeedCounter {
			slots = fmt.Sprintf("%d/%d", f.Available(), f.Total())
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID,
			f.Name,
			f.Type,
			f.Status,
			slots,
			countString(f.CurrentCount),
			f.URL,
		)
	}
	w.Flush()
}

func countString(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func init() {
	// Register Parent
	rootCmd.AddCommand(feedsCmd)

	// Register Subcommands
	feedsCmd.AddCommand(feedsListCmd)
	feedsCmd.AddCommand(feedsAddCmd)
	feedsCmd.AddCommand(feedsEditCmd)
	feedsCmd.AddCommand(feedsDeleteCmd)
	feedsCmd.AddCommand(feedsToggleCmd)
	feedsCmd.AddCommand(feedsInitialCountCmd)
	feedsCmd.AddCommand(globalCountCmd)

	for _, c := range []*cobra.Command{feedsAddCmd, feedsEditCmd} {
		c.Flags().StringVar(&feedName, "name", "", "Feed name")
		c.Flags().StringVar(&feedURL, "url", "", "Stream or source URL")
		c.Flags().StringVar(&feedType, "type", string(models.FeedMulticam), "Feed type: multicam or counter")
		c.Flags().StringVar(&feedStatus, "status", string(models.StatusActive), "Feed status: active or inactive")
		bindSlotFlags(c)
	}
	_ = feedsAddCmd.MarkFlagRequired("name")
	_ = feedsAddCmd.MarkFlagRequired("url")

	for _, c := range []*cobra.Command{feedsEditCmd, feedsDeleteCmd, feedsToggleCmd, feedsInitialCountCmd} {
		c.Flags().IntVar(&feedID, "id", 0, "ID of the feed")
		_ = c.MarkFlagRequired("id")
	}

	feedsInitialCountCmd.Flags().StringVar(&feedCount, "count", "0", "Initial count")
	globalCountCmd.Flags().StringVar(&feedCount, "count", "0", "Global car count")
}
