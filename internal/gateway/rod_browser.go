package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sbp-deeplinks/internal/domain"
	"sbp-deeplinks/internal/usecase"
)

const (
	// networkIdle is how long the page must go without requests to count as loaded.
	networkIdle = 500 * time.Millisecond
	// closeGrace bounds how long Close waits for script bodies still in flight.
	closeGrace = 2 * time.Second
	// clickableSelector narrows text-matched triggers to elements users press.
	clickableSelector = "button, a, [role=button], input[type=submit]"
	// iframeTarget is the CDP target type of an out-of-process child frame.
	iframeTarget proto.TargetTargetInfoType = "iframe"
)

// RodLauncher starts Chromium through the DevTools protocol.
type RodLauncher struct {
	bin    string
	logger *zap.Logger
}

var _ usecase.BrowserLauncher = (*RodLauncher)(nil)

// NewRodLauncher creates a launcher. An empty bin lets rod locate or download
// a browser.
func NewRodLauncher(bin string, logger *zap.Logger) *RodLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RodLauncher{bin: bin, logger: logger}
}

// Launch starts a browser with the device emulated and the sniffer armed for
// every document the page will load.
func (l *RodLauncher) Launch(ctx context.Context, opts domain.LaunchOptions, sink domain.EvidenceSink) (usecase.BrowserPage, error) {
	proc := launcher.New().
		Headless(opts.Headless).
		Set(flags.Flag("disable-popup-blocking"))
	if l.bin != "" {
		proc = proc.Bin(l.bin)
	}

	controlURL, err := proc.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		proc.Kill()
		return nil, fmt.Errorf("connect to chromium: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		proc.Kill()
		return nil, fmt.Errorf("create page: %w", err)
	}

	evCtx, stop := context.WithCancel(context.Background())
	p := &rodPage{
		proc:    proc,
		browser: browser,
		page:    page,
		sink:    sink,
		script:  InstallScript(opts.Hooks),
		log:     l.logger.With(zap.String("driver", "rod")),
		evCtx:   evCtx,
		stop:    stop,
		evPage:  page.Context(evCtx),
		scripts: make(map[scriptKey]scriptRef),
		frames:  make(map[proto.PageFrameID]string),
	}
	if err := p.arm(opts.Device); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// scriptKey identifies a response; request IDs are only unique per session.
type scriptKey struct {
	session proto.TargetSessionID
	request proto.NetworkRequestID
}

type scriptRef struct {
	url   string
	frame proto.PageFrameID
}

type rodPage struct {
	proc    *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
	sink    domain.EvidenceSink
	script  string
	agent   string
	log     *zap.Logger

	evCtx  context.Context
	stop   context.CancelFunc
	evPage *rod.Page
	scans  errgroup.Group

	mu      sync.Mutex
	closing bool
	scripts map[scriptKey]scriptRef
	frames  map[proto.PageFrameID]string
}

// arm emulates the device, exposes the report binding and subscribes to the
// events feeding both channels. It must run before the first navigation.
func (p *rodPage) arm(device domain.DeviceProfile) error {
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             device.Width,
		Height:            device.Height,
		DeviceScaleFactor: device.ScaleFactor,
		Mobile:            device.Mobile,
	}).Call(p.page); err != nil {
		return fmt.Errorf("emulate viewport: %w", err)
	}
	if device.UserAgent != "" {
		if err := (proto.EmulationSetUserAgentOverride{UserAgent: device.UserAgent}).Call(p.page); err != nil {
			return fmt.Errorf("emulate user agent: %w", err)
		}
		p.agent = device.UserAgent
	}
	if device.Touch {
		if err := (proto.EmulationSetTouchEmulationEnabled{Enabled: true}).Call(p.page); err != nil {
			p.log.Warn("touch emulation unavailable", zap.Error(err))
		}
	}

	p.subscribe(p.evPage)
	return p.armSession(p.evPage)
}

// armSession prepares one CDP session, the top page or an out-of-process
// child frame: report binding, sniffer for every new document, and
// auto-attach so cross-origin child frames get their own session paused
// until they are armed too.
func (p *rodPage) armSession(sess *rod.Page) error {
	if err := (proto.RuntimeAddBinding{Name: BindingName}).Call(sess); err != nil {
		p.log.Warn("report binding unavailable, falling back to console", zap.Error(err))
	}
	if _, err := sess.EvalOnNewDocument(p.script); err != nil {
		return fmt.Errorf("install sniffer: %w", err)
	}
	if err := (proto.TargetSetAutoAttach{
		AutoAttach:             true,
		WaitForDebuggerOnStart: true,
		Flatten:                true,
	}).Call(sess); err != nil {
		p.log.Warn("child frame auto-attach unavailable", zap.Error(err))
	}
	return nil
}

// subscribe routes the events of one session into both channels.
func (p *rodPage) subscribe(sess *rod.Page) {
	wait := sess.EachEvent(
		p.onBinding,
		p.onConsole,
		func(ev *proto.RuntimeExecutionContextCreated) { p.onContextCreated(sess, ev) },
		p.onFrameNavigated,
		p.onRequestedNavigation,
		func(ev *proto.NetworkResponseReceived) { p.onResponse(sess, ev) },
		func(ev *proto.NetworkLoadingFinished) { p.onLoadingFinished(sess, ev) },
		p.onAttached,
	)
	go wait()
}

// onAttached arms an auto-attached target and lets it run. Targets other than
// child frames (workers) are resumed untouched.
func (p *rodPage) onAttached(ev *proto.TargetAttachedToTarget) {
	child := p.browser.PageFromSession(ev.SessionID).Context(p.evCtx)
	resume := func() {
		if !ev.WaitingForDebugger {
			return
		}
		if err := (proto.RuntimeRunIfWaitingForDebugger{}).Call(child); err != nil {
			p.log.Debug("resuming attached target failed", zap.Error(err))
		}
	}
	if ev.TargetInfo == nil || ev.TargetInfo.Type != iframeTarget {
		p.spawn(func() error {
			resume()
			return nil
		})
		return
	}

	frameURL := ev.TargetInfo.URL
	p.spawn(func() error {
		defer resume()
		p.subscribe(child)
		if p.agent != "" {
			if err := (proto.EmulationSetUserAgentOverride{UserAgent: p.agent}).Call(child); err != nil {
				p.log.Debug("emulating user agent in child frame failed", zap.Error(err))
			}
		}
		if err := p.armSession(child); err != nil {
			p.log.Debug("arming child frame failed", zap.String("frame", frameURL), zap.Error(err))
		}
		return nil
	})
}

func (p *rodPage) onBinding(ev *proto.RuntimeBindingCalled) {
	if ev.Name != BindingName {
		return
	}
	e, err := ParseReport(ev.Payload)
	if err != nil {
		p.log.Debug("dropping sniffer report", zap.Error(err))
		return
	}
	p.sink.Observe(e)
}

func (p *rodPage) onConsole(ev *proto.RuntimeConsoleAPICalled) {
	if len(ev.Args) == 0 || ev.Args[0] == nil {
		return
	}
	if e, ok := ParseConsoleReport(ev.Args[0].Value.Str()); ok {
		p.sink.Observe(e)
	}
}

// onContextCreated arms frames the new-document script missed. The sniffer is
// idempotent, so double installs are harmless.
func (p *rodPage) onContextCreated(sess *rod.Page, ev *proto.RuntimeExecutionContextCreated) {
	if ev.Context == nil {
		return
	}
	if def, ok := ev.Context.AuxData["isDefault"]; ok && !def.Bool() {
		return
	}
	id := ev.Context.ID
	p.spawn(func() error {
		_, err := proto.RuntimeEvaluate{Expression: p.script, ContextID: id}.Call(sess)
		if err != nil {
			p.log.Debug("arming frame failed", zap.Error(err))
		}
		return nil
	})
}

func (p *rodPage) onFrameNavigated(ev *proto.PageFrameNavigated) {
	if ev.Frame == nil {
		return
	}
	p.mu.Lock()
	p.frames[ev.Frame.ID] = ev.Frame.URL
	p.mu.Unlock()
}

func (p *rodPage) onRequestedNavigation(ev *proto.PageFrameRequestedNavigation) {
	if e, ok := navigationEvidence(ev.URL, p.frameURL(ev.FrameID)); ok {
		p.sink.Observe(e)
	}
}

func (p *rodPage) onResponse(sess *rod.Page, ev *proto.NetworkResponseReceived) {
	if ev.Type != proto.NetworkResourceTypeScript || ev.Response == nil {
		return
	}
	p.mu.Lock()
	p.scripts[scriptKey{sess.SessionID, ev.RequestID}] = scriptRef{url: ev.Response.URL, frame: ev.FrameID}
	p.mu.Unlock()
}

// onLoadingFinished fetches finished script bodies off the event loop.
func (p *rodPage) onLoadingFinished(sess *rod.Page, ev *proto.NetworkLoadingFinished) {
	key := scriptKey{sess.SessionID, ev.RequestID}
	p.mu.Lock()
	ref, ok := p.scripts[key]
	delete(p.scripts, key)
	p.mu.Unlock()
	if !ok {
		return
	}

	id := ev.RequestID
	p.spawn(func() error {
		res, err := proto.NetworkGetResponseBody{RequestID: id}.Call(sess)
		if err != nil {
			p.log.Debug("script body unavailable", zap.String("script", ref.url), zap.Error(err))
			return nil
		}
		if res.Base64Encoded {
			return nil
		}
		for _, e := range scanEvidence(ref.url, res.Body, p.frameURL(ref.frame)) {
			p.sink.Observe(e)
		}
		return nil
	})
}

// spawn runs fn in the scan group unless Close has started.
func (p *rodPage) spawn(fn func() error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closing {
		return
	}
	p.scans.Go(fn)
}

func (p *rodPage) frameURL(id proto.PageFrameID) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames[id]
}

// Navigate loads url and waits until the network has been quiet for a moment.
func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	wait := page.WaitRequestIdle(networkIdle, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("wait for %s to settle: %w", url, err)
	}
	return nil
}

// Click finds the target and presses it with the left mouse button.
func (p *rodPage) Click(ctx context.Context, target domain.ClickTarget) error {
	page := p.page.Context(ctx)

	var (
		el  *rod.Element
		err error
	)
	if target.XPath != "" {
		el, err = page.ElementX(target.XPath)
	} else {
		el, err = page.ElementR(clickableSelector, target.TextPattern)
	}
	if err != nil {
		return fmt.Errorf("find %s: %w", target, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", target, err)
	}
	return nil
}

// Close gives in-flight script scans a short grace period, then tears the
// browser down.
func (p *rodPage) Close() error {
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
	}
	p.stop()
	<-done

	err := p.browser.Close()
	p.proc.Kill()
	p.proc.Cleanup()
	if err != nil {
		return fmt.Errorf("close chromium: %w", err)
	}
	return nil
}
