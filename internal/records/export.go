package records

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"parking-console/pkg/models"
)

// ExportHeader is the fixed first line of every export.
var ExportHeader = []string{"ID", "Number Plate", "Date", "Time", "Status", "Location"}

// WriteCSV writes the header and one comma-joined line per record, lines
// separated by "\n" with no trailing newline. Fields are not quoted: a comma
// inside a field shifts the columns of that line.
func WriteCSV(w io.Writer, recs []models.Record) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(ExportHeader, ",")); err != nil {
		return err
	}

	for _, r := range recs {
		line := strings.Join([]string{
			strconv.Itoa(r.ID),
			r.Plate,
			r.Date,
			r.Time,
			r.Status,
			r.Location,
		}, ",")

		if _, err := bw.WriteString("\n" + line); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ExportFilename names the export after the active date filter. Anything
// other than letters, digits, '-' and '_' becomes '-', so the name never
// leaves the output directory.
func ExportFilename(dateFilter string) string {
	if dateFilter == "" {
		dateFilter = "all"
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, dateFilter)
	return fmt.Sprintf("parking_records_%s.csv", safe)
}
