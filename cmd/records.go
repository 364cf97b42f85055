package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"parking-console/internal/records"
	"parking-console/pkg/models"
)

var (
	recordSearch string
	recordDate   string
	recordStatus string
	recordSort   string
	recordOrder  string
	recordLimit  int
	exportDir    string
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Search and export vehicle entry/exit records",
	Long:  `Records are read from the configured spreadsheet, normalized, then filtered and sorted locally.`,
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records matching the filters",
	Example: `  parking-console records list --search abc --status Parked
  parking-console records list --date 2024-01 --sort time --order asc`,
	Run: func(cmd *cobra.Command, args []string) {
		recs := queryRecords(cmd)

		if jsonOutput {
			printJSON(struct {
				Records []models.Record `json:"records"`
				Counts  records.Counts  `json:"counts"`
			}{recs, records.Summarize(recs)})
			return
		}

		counts := records.Summarize(recs)
		if recordLimit > 0 && len(recs) > recordLimit {
			recs = recs[:recordLimit]
		}

		if len(recs) == 0 {
			fmt.Println("No records found.")
		} else {
			printRecords(recs)
		}
		fmt.Printf("\nTotal: %d   Parked: %d   Exited: %d\n", counts.Total, counts.Parked, counts.Exited)
	},
}

var recordsPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the most recent rows of the record sheet",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		c := getConsole(ctx)

		n := recordLimit
		if n <= 0 {
			n = c.settings.PreviewSize
		}

		recs, err := records.NewPreviewLoader(c.requireSheet(), n).Load(ctx)
		exitOnError("loading records", err)

		if jsonOutput {
			printJSON(recs)
			return
		}
		if len(recs) == 0 {
			fmt.Println("No records found.")
			return
		}
		printRecords(recs)
	},
}

var recordsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered records as CSV",
	Long: `Writes parking_records_<date>.csv (or parking_records_all.csv without a date
filter) into the output directory. Use --output - to write to stdout.`,
	Run: func(cmd *cobra.Command, args []string) {
		recs := queryRecords(cmd)

		if exportDir == "-" {
			exitOnError("writing CSV", records.WriteCSV(os.Stdout, recs))
			fmt.Println()
			return
		}

		path := filepath.Join(exportDir, records.ExportFilename(recordDate))
		f, err := os.Create(path)
		exitOnError("creating export file", err)
		defer f.Close()

		exitOnError("writing CSV", records.WriteCSV(f, recs))

		fmt.Printf("Exported %d records to %s\n", len(recs), path)
	},
}

// queryRecords loads the full record set and applies the filter flags.
func queryRecords(cmd *cobra.Command) []models.Record {
	ctx := cmd.Context()
	c := getConsole(ctx)

	key, err := records.ParseSortKey(recordSort)
	exitOnError("parsing --sort", err)
	order, err := records.ParseOrder(recordOrder)
	exitOnError("parsing --order", err)

	all, err := records.NewDatabaseLoader(c.requireSheet()).Load(ctx)
	exitOnError("loading records", err)

	return records.Apply(all, records.Query{
		Search: recordSearch,
		Date:   recordDate,
		Status: recordStatus,
		SortBy: key,
		Order:  order,
	})
}

func printRecords(recs []models.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tPLATE\tDATE\tTIME\tSTATUS\tLOCATION")
	fmt.Fprintln(w, "--\t-----\t----\t----\t------\t--------")

	for _, r := range recs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Plate, r.Date, r.Time, r.Status, r.Location)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsPreviewCmd)
	recordsCmd.AddCommand(recordsExportCmd)

	for _, c := range []*cobra.Command{recordsListCmd, recordsExportCmd} {
		c.Flags().StringVar(&recordSearch, "search", "", "Case-insensitive match on plate or location")
		c.Flags().StringVar(&recordDate, "date", "", "Date prefix (e.g. 2024-01-15 or 2024-01)")
		c.Flags().StringVar(&recordStatus, "status", "", "Exact status (Parked or Exited)")
		c.Flags().StringVar(&recordSort, "sort", "date", "Sort key: id, plate, date, time, status, location")
		c.Flags().StringVar(&recordOrder, "order", "desc", "Sort order: asc or desc")
	}

	recordsListCmd.Flags().IntVar(&recordLimit, "limit", 0, "Show at most this many rows (counts still cover all matches)")
	recordsPreviewCmd.Flags().IntVarP(&recordLimit, "rows", "n", 0, "Number of rows (default from preview_size)")
	recordsExportCmd.Flags().StringVarP(&exportDir, "output", "o", ".", "Output directory, or - for stdout")
}
