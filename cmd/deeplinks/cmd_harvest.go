package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sbp-deeplinks/internal/config"
	"sbp-deeplinks/internal/gateway"
	"sbp-deeplinks/internal/metrics"
	"sbp-deeplinks/internal/usecase"
)

var (
	harvestOut      string
	harvestReport   string
	harvestHeadless bool
	harvestDevice   string
	harvestTimeout  time.Duration
	harvestDriver   string
	harvestEvidence string
	harvestBaseline []string
)

var harvestCmd = &cobra.Command{
	Use:   "harvest <url>",
	Short: "Record the app URIs a live payment page tries to open",
	Long: `Opens the payment page in an emulated mobile browser, clicks the pay control
and records every non-web URI the page navigates to or ships in its scripts.

The session is bounded by navigation + settle + extended wait. Ctrl-C or an
expired budget still writes whatever was observed so far.

Example:
  deeplinks harvest https://pay.example/invoice/42 --out uris.json --evidence evidence.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	f := harvestCmd.Flags()
	f.StringVar(&harvestOut, "out", "-", "Where to write the JSON array of URIs, - for stdout")
	f.StringVar(&harvestReport, "report", "", "Also write the full session report as JSON")
	f.BoolVar(&harvestHeadless, "headless", true, "Run the browser without a window")
	f.StringVar(&harvestDevice, "device", "", "Device profile to emulate")
	f.DurationVar(&harvestTimeout, "timeout", 0, "Settle wait after the click (overrides config)")
	f.StringVar(&harvestDriver, "driver", "", "Browser driver: rod or playwright")
	f.StringVar(&harvestEvidence, "evidence", "", "Write per-observation evidence as CSV")
	f.StringSliceVar(&harvestBaseline, "baseline", nil, "Earlier evidence CSVs; URIs missing from them are reported as new")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	target := args[0]

	if cmd.Flags().Changed("headless") {
		cfg.Harvest.Headless = harvestHeadless
	}
	if harvestDevice != "" {
		cfg.Harvest.Device = harvestDevice
	}
	if harvestTimeout > 0 {
		cfg.Harvest.SettleTimeout = harvestTimeout
	}
	if harvestDriver != "" {
		cfg.Harvest.Driver = harvestDriver
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	hc, err := cfg.ToHarvestConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uc := usecase.NewHarvestUseCase(newLauncher(cfg.Harvest), gateway.NewCSVEvidenceRepository(), hc, logger, metrics.New(prometheus.NewRegistry()))

	logger.Info("starting harvest",
		zap.String("target", target),
		zap.String("driver", cfg.Harvest.Driver),
		zap.String("device", cfg.Harvest.Device),
		zap.Duration("budget", hc.Budget()),
	)
	report, err := uc.Harvest(ctx, target)
	if err != nil {
		return err
	}

	// Results are written even after an interrupt.
	writeCtx := context.WithoutCancel(ctx)
	if len(harvestBaseline) > 0 {
		if err := uc.CompareBaseline(writeCtx, report, harvestBaseline); err != nil {
			return err
		}
	}
	if harvestEvidence != "" {
		if err := uc.SaveEvidence(writeCtx, harvestEvidence, report); err != nil {
			return err
		}
	}
	if harvestReport != "" {
		if err := gateway.WriteJSON(harvestReport, report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if err := gateway.WriteURIs(harvestOut, report.URIs); err != nil {
		return fmt.Errorf("write uris: %w", err)
	}
	return nil
}

func newLauncher(hc config.HarvestConfig) usecase.BrowserLauncher {
	if hc.Driver == config.DriverPlaywright {
		return gateway.NewPlaywrightLauncher(logger)
	}
	return gateway.NewRodLauncher(hc.BrowserBin, logger)
}
