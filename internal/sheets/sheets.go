// Package sheets reads the parking records spreadsheet through the Google
// Sheets v4 API.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"parking-console/internal/client"
	"parking-console/internal/logger"
	"parking-console/internal/records"
)

var ErrMissingConfig = errors.New("spreadsheet id and api key are required")

type Config struct {
	SpreadsheetID string
	APIKey        string
	// Endpoint overrides the API base URL (tests, proxies).
	Endpoint string
}

// Source implements records.RowSource.
type Source struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	logger        zerolog.Logger
}

func New(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.SpreadsheetID == "" || cfg.APIKey == "" {
		return nil, ErrMissingConfig
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Source{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger.WithComponent("sheets"),
	}, nil
}

// Rows fetches a range as strings. Rows past the range are never fetched.
func (s *Source) Rows(ctx context.Context, rng string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &client.StatusError{Op: "get sheet values", Code: gerr.Code, Body: gerr.Message}
		}
		return nil, fmt.Errorf("get sheet values: %w: %v", client.ErrTransport, err)
	}

	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("range %s: %w", rng, records.ErrNoData)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}

	s.logger.Debug().Str("range", rng).Int("rows", len(rows)).Msg("Fetched sheet range")

	return rows, nil
}

func cellString(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		// UNFORMATTED values come back as JSON numbers.
		if c == float64(int64(c)) {
			return fmt.Sprintf("%d", int64(c))
		}
		return fmt.Sprint(c)
	default:
		return fmt.Sprint(c)
	}
}
