package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sbp-deeplinks/internal/domain"
	"sbp-deeplinks/internal/metrics"
)

// HarvestConfig bounds and steers one harvest session.
type HarvestConfig struct {
	NavigationTimeout time.Duration
	SettleTimeout     time.Duration
	ExtendedWait      time.Duration
	ClickTimeout      time.Duration

	// Triggers are tried in order until one click succeeds.
	Triggers []domain.ClickTarget
	Launch   domain.LaunchOptions
}

// Budget is the hard wall-clock limit of a session.
func (c HarvestConfig) Budget() time.Duration {
	return c.NavigationTimeout + c.SettleTimeout + c.ExtendedWait
}

// HarvestUseCase drives a browser against a live payment page and collects
// the scheme URIs it tries to open or carries in its scripts.
type HarvestUseCase struct {
	launcher BrowserLauncher
	store    EvidenceStore
	cfg      HarvestConfig
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewHarvestUseCase creates a new instance of the usecase.
func NewHarvestUseCase(launcher BrowserLauncher, store EvidenceStore, cfg HarvestConfig, logger *zap.Logger, m *metrics.Metrics) *HarvestUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HarvestUseCase{launcher: launcher, store: store, cfg: cfg, logger: logger, metrics: m}
}

// Harvest runs one session against target. Navigation and click failures are
// logged and swallowed; running out of budget or being cancelled returns the
// observations gathered so far with Partial set. Only a browser that cannot be
// launched is an error.
func (uc *HarvestUseCase) Harvest(ctx context.Context, target string) (*domain.HarvestReport, error) {
	report := &domain.HarvestReport{
		SessionID: uuid.NewString(),
		Target:    target,
		Device:    uc.cfg.Launch.Device.Name,
		Platform:  domain.ResolvePlatform("", uc.cfg.Launch.Device.UserAgent),
		StartedAt: time.Now(),
	}
	log := uc.logger.With(zap.String("session_id", report.SessionID), zap.String("target", target))

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Budget())
	defer cancel()

	obs := domain.NewObservationSet()
	sink := &observer{set: obs, log: log, metrics: uc.metrics}

	page, err := uc.launcher.Launch(ctx, uc.cfg.Launch, sink)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	navCtx, navCancel := context.WithTimeout(ctx, uc.cfg.NavigationTimeout)
	if err := page.Navigate(navCtx, target); err != nil {
		log.Warn("navigation failed", zap.Error(err))
	}
	navCancel()

	report.Clicked = uc.clickTrigger(ctx, page, log)

	settled := sleep(ctx, uc.cfg.SettleTimeout)
	if settled && obs.Len() == 0 && uc.cfg.ExtendedWait > 0 {
		log.Info("nothing observed after settle period, waiting longer", zap.Duration("extended_wait", uc.cfg.ExtendedWait))
		settled = sleep(ctx, uc.cfg.ExtendedWait)
	}

	report.Partial = !settled
	if report.Partial {
		log.Warn("session ended early, returning partial results", zap.Error(ctx.Err()))
	}
	if err := page.Close(); err != nil {
		log.Warn("closing browser", zap.Error(err))
	}

	report.URIs = obs.Sorted()
	report.Evidence = obs.Evidence()
	report.Duration = time.Since(report.StartedAt)
	uc.metrics.ObserveHarvest(report.StartedAt, report.Partial)

	counts := obs.CountBySource()
	log.Info("harvest finished",
		zap.Int("uris", len(report.URIs)),
		zap.Int("runtime", counts[domain.SourceRuntime]),
		zap.Int("static_scan", counts[domain.SourceStaticScan]),
		zap.Bool("partial", report.Partial),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// SaveEvidence writes the report's evidence to path.
func (uc *HarvestUseCase) SaveEvidence(ctx context.Context, path string, report *domain.HarvestReport) error {
	if err := uc.store.WriteEvidence(ctx, path, report.Evidence); err != nil {
		return fmt.Errorf("save evidence: %w", err)
	}
	return nil
}

// CompareBaseline marks the report's URIs that no earlier evidence file holds.
func (uc *HarvestUseCase) CompareBaseline(ctx context.Context, report *domain.HarvestReport, paths []string) error {
	baseline, err := uc.store.ReadEvidence(ctx, paths)
	if err != nil {
		return fmt.Errorf("load baseline: %w", err)
	}
	report.CompareBaseline(baseline)
	uc.logger.Info("compared with baseline",
		zap.String("session_id", report.SessionID),
		zap.Int("baseline", len(baseline)),
		zap.Int("new", len(report.NewSinceBaseline)),
	)
	return nil
}

// clickTrigger tries each configured trigger and returns the one that worked.
func (uc *HarvestUseCase) clickTrigger(ctx context.Context, page BrowserPage, log *zap.Logger) string {
	for _, t := range uc.cfg.Triggers {
		if ctx.Err() != nil {
			return ""
		}
		clickCtx, cancel := context.WithTimeout(ctx, uc.cfg.ClickTimeout)
		err := page.Click(clickCtx, t)
		cancel()
		if err == nil {
			log.Debug("payment trigger clicked", zap.Stringer("trigger", t))
			return t.String()
		}
		log.Debug("payment trigger not clicked", zap.Stringer("trigger", t), zap.Error(err))
	}
	log.Warn("no payment trigger could be clicked")
	return ""
}

// sleep waits for d or until ctx ends, reporting whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// observer feeds the session accumulator and records each new URI.
type observer struct {
	set     *domain.ObservationSet
	log     *zap.Logger
	metrics *metrics.Metrics
}

func (o *observer) Observe(ev domain.Evidence) bool {
	if ev.Source == domain.SourceRuntime && !domain.IsRuntimeCandidate(ev.URI) {
		return false
	}
	if ev.Source == domain.SourceStaticScan && domain.IsWebScheme(ev.URI) {
		return false
	}
	if !o.set.Observe(ev) {
		return false
	}
	o.metrics.IncObservation(string(ev.Source))
	o.log.Debug("observed deep link",
		zap.String("uri", ev.URI),
		zap.String("source", string(ev.Source)),
		zap.String("point", string(ev.Point)),
		zap.String("frame", ev.Frame),
	)
	return true
}
