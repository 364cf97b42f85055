package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"parking-console/internal/poller"
	"parking-console/internal/records"
	"parking-console/pkg/models"
)

// snapshot is the JSON form of the dashboard.
type snapshot struct {
	Dashboard   models.DashboardStats        `json:"dashboard"`
	Occupancy   models.Occupancy             `json:"occupancy"`
	GlobalCount int                          `json:"globalCarCount"`
	Recent      []models.Record              `json:"recentRecords,omitempty"`
	Polls       map[string]poller.PollStatus `json:"polls"`
}

func takeSnapshot(v *poller.View, views []string) snapshot {
	s := snapshot{
		Dashboard:   v.Dashboard(),
		Occupancy:   v.Occupancy(),
		GlobalCount: v.GlobalCount(),
		Recent:      v.Records(),
		Polls:       make(map[string]poller.PollStatus, len(views)),
	}
	for _, name := range views {
		s.Polls[name] = v.Status(name)
	}
	return s
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show occupancy, feed totals and the latest records",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)

		views := []string{poller.ViewDashboard, poller.ViewOccupancy, poller.ViewFeeds}
		if c.sheet != nil {
			views = append(views, poller.ViewRecords)
		}
		c.refresh(ctx, views...)

		if jsonOutput {
			printJSON(takeSnapshot(c.view, views))
			return
		}
		renderDashboard(os.Stdout, c.view, nil)
	},
}

var occupancyCmd = &cobra.Command{
	Use:   "occupancy",
	Short: "Show per-location occupancy of the multicam feeds",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)
		c.refresh(ctx, poller.ViewOccupancy)

		occ := c.view.Occupancy()
		if jsonOutput {
			printJSON(occ)
			return
		}
		printOccupancy(os.Stdout, occ)
	},
}

// renderDashboard writes the text dashboard. Poll health lines are printed
// for the given views only.
func renderDashboard(out io.Writer, v *poller.View, views []string) {
	d := v.Dashboard()

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CURRENT\tTOTAL SPACES\tAVAILABLE\tACTIVE FEEDS\tGLOBAL COUNT")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\n", d.CurrentCount, d.TotalSpaces, d.AvailableSpaces, d.ActiveFeeds, v.GlobalCount())
	w.Flush()

	fmt.Fprintln(out)
	printOccupancy(out, v.Occupancy())

	if recent := v.Records(); len(recent) > 0 {
		counts := records.Summarize(recent)
		fmt.Fprintf(out, "\nRecent records (%d, %d parked, %d exited)\n", counts.Total, counts.Parked, counts.Exited)

		w = tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tPLATE\tDATE\tTIME\tSTATUS\tLOCATION")
		for _, r := range recent {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Plate, r.Date, r.Time, r.Status, r.Location)
		}
		w.Flush()
	}

	for _, name := range views {
		st := v.Status(name)
		switch {
		case st.Failures > 0:
			fmt.Fprintf(out, "! %s: %d failed polls, last error: %s\n", name, st.Failures, st.LastError)
		case st.LastSuccess.IsZero():
			fmt.Fprintf(out, "  %s: waiting for first poll\n", name)
		default:
			fmt.Fprintf(out, "  %s: updated %s\n", name, st.LastSuccess.Format(time.TimeOnly))
		}
	}
}

func printOccupancy(out io.Writer, occ models.Occupancy) {
	if len(occ.Locations) == 0 {
		fmt.Fprintln(out, "No multicam locations.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "LOCATION\tOCCUPIED\tAVAILABLE\tTOTAL\tOCCUPANCY")
	fmt.Fprintln(w, "--------\t--------\t---------\t-----\t---------")
	for _, l := range occ.Locations {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.0f%%\n", l.Location, l.Occupied, l.Available, l.Total, l.Percent)
	}
	fmt.Fprintf(w, "Total\t%d\t%d\t%d\t\n", occ.TotalOccupied, occ.TotalFree, occ.TotalCapacity)
	w.Flush()
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(occupancyCmd)
}
