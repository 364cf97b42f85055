package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"parking-console/internal/config"
	"parking-console/internal/logger"
)

var cfgFile string
var jsonOutput bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "parking-console",
	Short: "Operations console for the parking management backend",
	Long: `Watch live occupancy and feed health, manage camera and counter feeds,
and search or export the vehicle entry/exit records.`,
}

func Execute() {
	// Interrupts cancel in-flight requests and stop the long-running commands.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		config.InitConfig(cfgFile)
		if err := logger.Init(config.Load().Log); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid log configuration: %v\n", err)
		}
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.parking-console.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
}
