package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sbp-deeplinks/internal/domain"
	"sbp-deeplinks/internal/usecase"
)

// PlaywrightLauncher drives Chromium through Playwright. It needs the
// Playwright driver and browsers installed on the host.
type PlaywrightLauncher struct {
	logger *zap.Logger
}

var _ usecase.BrowserLauncher = (*PlaywrightLauncher)(nil)

// NewPlaywrightLauncher creates a launcher.
func NewPlaywrightLauncher(logger *zap.Logger) *PlaywrightLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaywrightLauncher{logger: logger}
}

// Launch starts Playwright, opens a context emulating the device and arms the
// sniffer before any page script runs.
func (l *PlaywrightLauncher) Launch(ctx context.Context, opts domain.LaunchOptions, sink domain.EvidenceSink) (usecase.BrowserPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-popup-blocking"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	p := &playwrightPage{
		pw:      pw,
		browser: browser,
		sink:    sink,
		script:  InstallScript(opts.Hooks),
		log:     l.logger.With(zap.String("driver", "playwright")),
	}
	if err := p.arm(opts.Device); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

type playwrightPage struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
	sink    domain.EvidenceSink
	script  string
	log     *zap.Logger

	scans   errgroup.Group
	mu      sync.Mutex
	closing bool
}

func (p *playwrightPage) arm(device domain.DeviceProfile) error {
	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: device.Width, Height: device.Height},
		DeviceScaleFactor: playwright.Float(device.ScaleFactor),
		IsMobile:          playwright.Bool(device.Mobile),
		HasTouch:          playwright.Bool(device.Touch),
	}
	if device.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(device.UserAgent)
	}

	bctx, err := p.browser.NewContext(ctxOpts)
	if err != nil {
		return fmt.Errorf("create browser context: %w", err)
	}
	p.bctx = bctx

	if err := bctx.ExposeBinding(BindingName, p.onBinding); err != nil {
		p.log.Warn("report binding unavailable, falling back to console", zap.Error(err))
	}
	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(p.script)}); err != nil {
		return fmt.Errorf("install sniffer: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	p.page = page

	// Handlers run on the driver's dispatch loop and must not call back into
	// Playwright synchronously.
	page.OnConsole(p.onConsole)
	page.OnFrameAttached(p.onFrameAttached)
	page.OnResponse(p.onResponse)
	page.OnRequest(p.onRequest)
	return nil
}

func (p *playwrightPage) onBinding(_ *playwright.BindingSource, args ...interface{}) interface{} {
	if len(args) == 0 {
		return nil
	}
	payload, ok := args[0].(string)
	if !ok {
		return nil
	}
	ev, err := ParseReport(payload)
	if err != nil {
		p.log.Debug("dropping sniffer report", zap.Error(err))
		return nil
	}
	p.sink.Observe(ev)
	return nil
}

func (p *playwrightPage) onConsole(msg playwright.ConsoleMessage) {
	if ev, ok := ParseConsoleReport(msg.Text()); ok {
		p.sink.Observe(ev)
	}
}

// onFrameAttached arms frames the init script missed. The sniffer is
// idempotent, so double installs are harmless.
func (p *playwrightPage) onFrameAttached(frame playwright.Frame) {
	p.spawn(func() error {
		if _, err := frame.Evaluate(p.script); err != nil {
			p.log.Debug("arming frame failed", zap.String("frame", frame.URL()), zap.Error(err))
		}
		return nil
	})
}

// onRequest records navigation requests leaving for non-web schemes.
func (p *playwrightPage) onRequest(req playwright.Request) {
	if !req.IsNavigationRequest() {
		return
	}
	frame := ""
	if f := req.Frame(); f != nil {
		frame = f.URL()
	}
	if ev, ok := navigationEvidence(req.URL(), frame); ok {
		p.sink.Observe(ev)
	}
}

func (p *playwrightPage) onResponse(resp playwright.Response) {
	req := resp.Request()
	if req == nil || req.ResourceType() != "script" {
		return
	}
	scriptURL := resp.URL()
	frame := ""
	if f := resp.Frame(); f != nil {
		frame = f.URL()
	}
	p.spawn(func() error {
		body, err := resp.Text()
		if err != nil {
			p.log.Debug("script body unavailable", zap.String("script", scriptURL), zap.Error(err))
			return nil
		}
		for _, ev := range scanEvidence(scriptURL, body, frame) {
			p.sink.Observe(ev)
		}
		return nil
	})
}

func (p *playwrightPage) spawn(fn func() error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closing {
		return
	}
	p.scans.Go(fn)
}

// Navigate loads url and waits for network idle.
func (p *playwrightPage) Navigate(ctx context.Context, url string) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	_, err = p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   timeout,
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Click finds the target and presses it.
func (p *playwrightPage) Click(ctx context.Context, target domain.ClickTarget) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return err
	}
	selector := "text=" + target.TextPattern
	if target.XPath != "" {
		selector = "xpath=" + target.XPath
	}
	if err := p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("click %s: %w", target, err)
	}
	return nil
}

// Close waits briefly for script bodies still being read, then stops the
// browser and the driver.
func (p *playwrightPage) Close() error {
	p.mu.Lock()
	p.closing = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = p.scans.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(closeGrace):
		p.log.Debug("script scans still running at close")
	}

	var errs []error
	if p.bctx != nil {
		errs = append(errs, p.bctx.Close())
	}
	errs = append(errs, p.browser.Close(), p.pw.Stop())
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close playwright: %w", err)
	}
	return nil
}

// timeoutMillis converts the context deadline to a Playwright timeout. A
// context without deadline maps to nil, Playwright's default.
func timeoutMillis(ctx context.Context) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil, nil
	}
	ms := time.Until(deadline).Milliseconds()
	if ms <= 0 {
		// zero disables the timeout in Playwright
		return nil, context.DeadlineExceeded
	}
	return playwright.Float(float64(ms)), nil
}
