package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mauv0809/courtbooker/internal/booking"
	"github.com/mauv0809/courtbooker/internal/config"
	"github.com/mauv0809/courtbooker/internal/logger"
	"github.com/mauv0809/courtbooker/internal/runner"
)

var (
	configPath string
	mockMode   bool
	testMode   bool
	date       string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "booker",
	Short: "Run one court booking from a config file",
	Long: `Runs the complete booking workflow once: authenticate, load the
reservation page for the target date, pick the best slot against the
configured hour and court preferences, and submit the reservation.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if mockMode {
			cfg.HTTP.Mode = "mock"
		}
		if testMode {
			cfg.TestMode = true
		}
		if date != "" {
			cfg.ReservationDate = date
		}

		r := runner.New(&logger.Charm{})
		result, err := r.Run(context.Background(), cfg, configPath)
		if err != nil {
			return err
		}
		fmt.Printf("Booked %s at %s on %s\n", result.Slot.CourtName, result.Slot.Hour, result.Target.Display)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "config.yaml", "Path to the booking config file")
	rootCmd.Flags().BoolVar(&mockMode, "mock", false, "Score the configured mock slots without network calls")
	rootCmd.Flags().BoolVar(&testMode, "test", false, "Run the full workflow but skip the final submission")
	rootCmd.Flags().StringVar(&date, "date", "", "Explicit target date (YYYY-MM-DD), overriding the config")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps failure kinds to distinct statuses so schedulers can tell
// configuration mistakes from site trouble.
func exitCode(err error) int {
	var cfgErr *booking.ConfigurationError
	var netErr *booking.NetworkError
	var noSlot *booking.NoEligibleSlotError
	switch {
	case errors.As(err, &cfgErr):
		return 2
	case errors.As(err, &netErr):
		return 3
	case errors.As(err, &noSlot):
		return 4
	default:
		return 1
	}
}
