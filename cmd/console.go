package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"parking-console/internal/auth"
	"parking-console/internal/client"
	"parking-console/internal/config"
	"parking-console/internal/coordinator"
	"parking-console/internal/poller"
	"parking-console/internal/records"
	"parking-console/internal/sheets"
)

// console bundles everything an authenticated command needs.
type console struct {
	settings config.Settings
	session  *auth.Session
	api      *client.ParkingClient
	view     *poller.View
	sync     *poller.Synchronizer
	coord    *coordinator.Coordinator
	sheet    *sheets.Source // nil when no sheet is configured
}

func newSession(s config.Settings) *auth.Session {
	return auth.NewSession(config.TokenStore{}, auth.Operator{
		Email:        s.OperatorEmail,
		PasswordHash: s.OperatorHash,
	}, s.SessionSecret, s.SessionTTL)
}

// getConsole restores the session and wires the client, view state and
// synchronizer. It exits when the operator is not logged in.
func getConsole(ctx context.Context) *console {
	s := config.Load()

	session := newSession(s)
	if err := session.Init(); err != nil {
		fmt.Printf("Error restoring session: %v\n", err)
		os.Exit(1)
	}
	if err := session.Require(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	c, err := newConsole(ctx, s, session)
	exitOnError("configuring record source", err)

	return c
}

// newConsole wires a console. session may be nil for unattended processes,
// in which case no bearer token is sent.
func newConsole(ctx context.Context, s config.Settings, session *auth.Session) (*console, error) {
	token := ""
	if session != nil {
		token = session.Token()
	}

	api := client.New(client.ClientConfig{
		BaseURL:      s.BaseURL,
		SessionToken: token,
		Timeout:      s.PollTimeout,
	})

	c := &console{
		settings: s,
		session:  session,
		api:      api,
		view:     poller.NewView(),
	}

	var loader poller.RecordLoader
	if s.SheetID != "" {
		src, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID: s.SheetID,
			APIKey:        s.SheetAPIKey,
			Endpoint:      s.SheetEndpoint,
		})
		if err != nil {
			return nil, err
		}
		c.sheet = src
		// The records view holds the dashboard preview, not the full set.
		loader = records.NewPreviewLoader(src, s.PreviewSize)
	}

	intervals := make(map[string]time.Duration, len(poller.AllViews))
	for _, name := range poller.AllViews {
		intervals[name] = s.PollInterval
	}
	intervals[poller.ViewRecords] = s.RecordsInterval

	c.sync = poller.New(c.view, api, loader, poller.Options{
		Intervals: intervals,
		Timeout:   s.PollTimeout,
	})
	c.coord = coordinator.New(api, c.view)

	return c, nil
}

// refresh polls the given views once and exits on failure.
func (c *console) refresh(ctx context.Context, views ...string) {
	if err := c.sync.Refresh(ctx, views...); err != nil {
		fmt.Printf("Error fetching %v: %v\n", views, err)
		os.Exit(1)
	}
}

// requireSheet exits unless a record source is configured.
func (c *console) requireSheet() *sheets.Source {
	if c.sheet == nil {
		fmt.Printf("Error: %v (set %s or PARKING_SHEET_ID)\n", sheets.ErrMissingConfig, config.KeySheetID)
		os.Exit(1)
	}
	return c.sheet
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Printf("Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

func exitOnError(action string, err error) {
	if err != nil {
		fmt.Printf("Error %s: %v\n", action, err)
		os.Exit(1)
	}
}
