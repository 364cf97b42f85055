// Package records turns raw sheet rows into parking records and derives
// filtered, sorted and exported views of them.
package records

import (
	"strconv"
	"strings"

	"parking-console/internal/logger"
	"parking-console/pkg/models"
)

// Column order is the contract with the records sheet.
const (
	colID = iota
	colPlate
	colDate
	colTime
	colStatus
	colLocation
	numColumns
)

// DefaultPreviewSize is how many trailing rows the dashboard preview shows.
const DefaultPreviewSize = 20

// IngestOptions says what the caller's range contains.
type IngestOptions struct {
	// HasHeader is true when row 0 is the header row and must be skipped.
	HasHeader bool
}

// Ingest normalizes rows in source order. Rows whose id does not parse or
// whose plate is empty are dropped; no other field is validated.
func Ingest(rows [][]string, opts IngestOptions) []models.Record {
	if opts.HasHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	out := make([]models.Record, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		rec, ok := normalize(row)
		if !ok {
			dropped++
			continue
		}
		out = append(out, rec)
	}

	if dropped > 0 {
		log := logger.WithComponent("records")
		log.Debug().Int("dropped", dropped).Int("kept", len(out)).Msg("Dropped unparseable rows")
	}

	return out
}

func normalize(row []string) (models.Record, bool) {
	cells := make([]string, numColumns)
	copy(cells, row)

	id, err := strconv.Atoi(strings.TrimSpace(cells[colID]))
	if err != nil {
		return models.Record{}, false
	}
	if strings.TrimSpace(cells[colPlate]) == "" {
		return models.Record{}, false
	}

	return models.Record{
		ID:       id,
		Plate:    cells[colPlate],
		Date:     cells[colDate],
		Time:     cells[colTime],
		Status:   cells[colStatus],
		Location: cells[colLocation],
	}, true
}

// Latest returns the last n records by position, not by date.
func Latest(recs []models.Record, n int) []models.Record {
	if n <= 0 || n >= len(recs) {
		return append([]models.Record{}, recs...)
	}
	return append([]models.Record{}, recs[len(recs)-n:]...)
}
