package records

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"parking-console/internal/logger"
	"parking-console/pkg/models"
)

// ErrNoData means the source range exists but holds no rows.
var ErrNoData = errors.New("no data in source range")

// RowSource reads a rectangular range of string cells.
type RowSource interface {
	Rows(ctx context.Context, rng string) ([][]string, error)
}

// Loader binds a source range to the ingestion options that match it.
type Loader struct {
	Source  RowSource
	Range   string
	Options IngestOptions
	// Limit keeps only the last Limit rows when positive.
	Limit int

	logger zerolog.Logger
}

// Database ranges skip the header themselves; the preview range includes it.
const (
	DatabaseRange = "Sheet1!A2:F1000"
	PreviewRange  = "Sheet1!A1:G100"
)

// NewDatabaseLoader reads the full records range, which starts below the header.
func NewDatabaseLoader(src RowSource) *Loader {
	return &Loader{Source: src, Range: DatabaseRange, logger: logger.WithComponent("records")}
}

// NewPreviewLoader reads the dashboard range, header included, and keeps the
// last n rows.
func NewPreviewLoader(src RowSource, n int) *Loader {
	if n <= 0 {
		n = DefaultPreviewSize
	}
	return &Loader{
		Source:  src,
		Range:   PreviewRange,
		Options: IngestOptions{HasHeader: true},
		Limit:   n,
		logger:  logger.WithComponent("records"),
	}
}

// Load fetches and normalizes the range. An empty range yields an empty set,
// not an error; fetch failures are returned so pollers can keep old state.
func (l *Loader) Load(ctx context.Context) ([]models.Record, error) {
	rows, err := l.Source.Rows(ctx, l.Range)
	if errors.Is(err, ErrNoData) {
		l.logger.Warn().Str("range", l.Range).Msg("No data found in the sheet")
		return []models.Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	opts := l.Options
	if l.Limit > 0 {
		// Truncate by row position before dropping bad rows.
		if opts.HasHeader && len(rows) > 0 {
			rows, opts.HasHeader = rows[1:], false
		}
		if len(rows) > l.Limit {
			rows = rows[len(rows)-l.Limit:]
		}
	}

	return Ingest(rows, opts), nil
}
