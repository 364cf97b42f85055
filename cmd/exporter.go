package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"parking-console/internal/config"
	"parking-console/internal/logger"
	"parking-console/internal/poller"
	"parking-console/pkg/models"
)

// Variables to hold flag values
var (
	expPort       string
	serviceAction string // "install", "uninstall", "start", "stop"
)

// --- SERVICE WRAPPER ---

// program implements the kardianos/service interface
type program struct {
	settings config.Settings
	server   *http.Server
	console  *console
	cancel   context.CancelFunc
	done     chan struct{}
	logger   zerolog.Logger
}

func (p *program) Start(s service.Service) error {
	// Start should not block. Do the actual work async.
	c, err := newConsole(context.Background(), p.settings, nil)
	if err != nil {
		return err
	}
	p.console = c

	registry := prometheus.NewRegistry()
	registry.MustRegister(NewParkingCollector(c.view))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	p.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", p.settings.ExporterPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var ctx context.Context
	ctx, p.cancel = context.WithCancel(context.Background())
	p.done = make(chan struct{})

	go p.run(ctx)
	return nil
}

func (p *program) run(ctx context.Context) {
	defer close(p.done)

	// Poll loops keep the view fresh; scrapes only read it.
	if err := p.console.sync.Start(ctx); err != nil {
		p.logger.Error().Err(err).Msg("Failed to start poll loops")
		return
	}

	p.logger.Info().Str("addr", p.server.Addr).Strs("views", p.console.sync.Running()).Msg("Parking exporter listening")

	// Blocking call to listen
	if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		p.logger.Error().Err(err).Msg("HTTP server error")
	}
}

func (p *program) Stop(s service.Service) error {
	p.logger.Info().Msg("Stopping service...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.server.Shutdown(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("Server forced to shutdown")
	}
	p.cancel()
	p.console.sync.Stop()

	select {
	case <-p.done:
	case <-ctx.Done():
	}
	return nil
}

// --- COLLECTOR LOGIC ---

// ParkingCollector exports the current view state. It never calls the
// backend; a stale view shows up in the poll metrics instead.
type ParkingCollector struct {
	view *poller.View
}

func NewParkingCollector(view *poller.View) *ParkingCollector {
	return &ParkingCollector{view: view}
}

var (
	upDesc = prometheus.NewDesc(
		"parking_up", "Whether the last feeds poll succeeded.", nil, nil,
	)
	pollSuccessDesc = prometheus.NewDesc(
		"parking_poll_last_success_timestamp_seconds", "Unix time of the last successful poll.", []string{"view"}, nil,
	)
	pollFailuresDesc = prometheus.NewDesc(
		"parking_poll_consecutive_failures", "Consecutive failed polls.", []string{"view"}, nil,
	)
	feedActiveDesc = prometheus.NewDesc(
		"parking_feed_active", "Feed status (1=active).", []string{"id", "name", "type"}, nil,
	)
	feedCountDesc = prometheus.NewDesc(
		"parking_feeds_total", "Configured feeds grouped by type and status.", []string{"type", "status"}, nil,
	)
	counterCurrentDesc = prometheus.NewDesc(
		"parking_counter_current_count", "Current count of a counter feed.", []string{"id", "name"}, nil,
	)
	locationOccupiedDesc = prometheus.NewDesc(
		"parking_location_occupied_slots", "Occupied slots per multicam location.", []string{"id", "location"}, nil,
	)
	locationCapacityDesc = prometheus.NewDesc(
		"parking_location_capacity_slots", "Total slots per multicam location.", []string{"id", "location"}, nil,
	)
	occupiedDesc = prometheus.NewDesc(
		"parking_occupied_slots", "Occupied slots across all multicam locations.", nil, nil,
	)
	capacityDesc = prometheus.NewDesc(
		"parking_capacity_slots", "Total slots across all multicam locations.", nil, nil,
	)
	globalCountDesc = prometheus.NewDesc(
		"parking_global_car_count", "Global car count reported by the backend.", nil, nil,
	)
)

func (c *ParkingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- upDesc
	ch <- pollSuccessDesc
	ch <- pollFailuresDesc
	ch <- feedActiveDesc
	ch <- feedCountDesc
	ch <- counterCurrentDesc
	ch <- locationOccupiedDesc
	ch <- locationCapacityDesc
	ch <- occupiedDesc
	ch <- capacityDesc
	ch <- globalCountDesc
}

func (c *ParkingCollector) Collect(ch chan<- prometheus.Metric) {
	// 1. Poll health
	for _, name := range poller.AllViews {
		st := c.view.Status(name)
		if !st.LastSuccess.IsZero() {
			ch <- prometheus.MustNewConstMetric(pollSuccessDesc, prometheus.GaugeValue, float64(st.LastSuccess.Unix()), name)
		}
		ch <- prometheus.MustNewConstMetric(pollFailuresDesc, prometheus.GaugeValue, float64(st.Failures), name)
	}

	feedsStatus := c.view.Status(poller.ViewFeeds)
	up := 0.0
	if !feedsStatus.LastSuccess.IsZero() && feedsStatus.Failures == 0 {
		up = 1.0
	}
	ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, up)

	// 2. Feeds
	counts := make(map[[2]string]float64)
	for _, f := range c.view.Feeds() {
		id := strconv.Itoa(f.ID)

		active := 0.0
		if f.Status == models.StatusActive {
			active = 1.0
		}
		ch <- prometheus.MustNewConstMetric(feedActiveDesc, prometheus.GaugeValue, active, id, f.Name, string(f.Type))

		if f.Type == models.FeedCounter && f.CurrentCount != nil {
			ch <- prometheus.MustNewConstMetric(counterCurrentDesc, prometheus.GaugeValue, float64(*f.CurrentCount), id, f.Name)
		}

		counts[[2]string{string(f.Type), string(f.Status)}]++
	}
	for k, n := range counts {
		ch <- prometheus.MustNewConstMetric(feedCountDesc, prometheus.GaugeValue, n, k[0], k[1])
	}
	ch <- prometheus.MustNewConstMetric(globalCountDesc, prometheus.GaugeValue, float64(c.view.GlobalCount()))

	// 3. Occupancy
	occ := c.view.Occupancy()
	for _, l := range occ.Locations {
		id := strconv.Itoa(l.FeedID)
		ch <- prometheus.MustNewConstMetric(locationOccupiedDesc, prometheus.GaugeValue, float64(l.Occupied), id, l.Location)
		ch <- prometheus.MustNewConstMetric(locationCapacityDesc, prometheus.GaugeValue, float64(l.Total), id, l.Location)
	}
	ch <- prometheus.MustNewConstMetric(occupiedDesc, prometheus.GaugeValue, float64(occ.TotalOccupied))
	ch <- prometheus.MustNewConstMetric(capacityDesc, prometheus.GaugeValue, float64(occ.TotalCapacity))
}

// --- COMMAND ---

var exporterCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Start Prometheus Exporter service",
	Long: `Starts a long-running HTTP server that polls the parking backend and
exposes occupancy and feed health metrics. Can be installed as a system service.`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("exporter")

		settings := config.Load()
		if cmd.Flags().Changed("port") {
			settings.ExporterPort = expPort
		}

		// 1. Define Service Configuration
		args = []string{"exporter", "--port", settings.ExporterPort}
		if cfgFile != "" {
			// The service manager runs with a different home directory.
			args = append(args, "--config", cfgFile)
		}
		svcConfig := &service.Config{
			Name:        "parking-exporter",
			DisplayName: "Parking Prometheus Exporter",
			Description: "Exposes parking occupancy and feed health to Prometheus",
			Arguments:   args,
		}

		prg := &program{settings: settings, logger: log}

		s, err := service.New(prg, svcConfig)
		if err != nil {
			fmt.Printf("Error creating service: %v\n", err)
			os.Exit(1)
		}

		// 2. Handle Service Control Actions (Install, Start, Stop, Uninstall)
		if serviceAction != "" {
			if serviceAction == "install" && cfgFile == "" {
				fmt.Println("Warning: installing without --config; the service will look for its own $HOME/.parking-console.yaml")
			}

			if err := service.Control(s, serviceAction); err != nil {
				fmt.Printf("Failed to %s service: %v\n", serviceAction, err)
				os.Exit(1)
			}
			fmt.Printf("Service action '%s' completed successfully.\n", serviceAction)
			return
		}

		// 3. Run the Service (Blocking)
		// This happens when the Service Manager starts the binary, OR when run interactively without flags
		if err = s.Run(); err != nil {
			log.Error().Err(err).Msg("Service stopped with error")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exporterCmd)
	exporterCmd.Flags().StringVar(&expPort, "port", "9100", "Port to listen on")
	exporterCmd.Flags().StringVar(&serviceAction, "service", "", "Service action: install, uninstall, start, stop")
}
