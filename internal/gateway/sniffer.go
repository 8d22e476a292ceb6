package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sbp-deeplinks/internal/domain"
)

const (
	// BindingName is the page function the sniffer reports through.
	BindingName = "__dlHarvestReport"
	// ConsolePrefix marks console messages carrying a report when the binding
	// is unavailable.
	ConsolePrefix = "[deeplink-harvest] "
)

// snifferPrelude sets up the per-frame state shared by all hooks. Each frame
// has its own window, so first-seen dedup is per frame.
const snifferPrelude = `(function () {
  var w = window;
  var h = w.__dlHarvest;
  if (!h) {
    h = w.__dlHarvest = {
      seen: {},
      undo: {},
      report: function (uri, point) {
        try {
          if (uri === undefined || uri === null) return;
          uri = String(uri);
          if (!uri || h.seen[uri]) return;
          h.seen[uri] = true;
          var frame = '';
          try { frame = String(w.location.href); } catch (e) {}
          var msg = JSON.stringify({ uri: uri, point: point, frame: frame });
          if (typeof w.` + BindingName + ` === 'function') {
            w.` + BindingName + `(msg);
          } else {
            console.debug('` + ConsolePrefix + `' + msg);
          }
        } catch (e) {}
      },
      remove: function (point) {
        var fn = h.undo[point];
        if (fn) {
          try { fn(); } catch (e) {}
          delete h.undo[point];
        }
      }
    };
  }
`

const snifferEpilogue = `})();
`

// hookSources install one interception point each, wrapped in their own
// function scope. Every hook reports and then performs the original behavior;
// history hooks report the location as it was when the call was made.
// Some browsers make location members unforgeable, so installs are best effort.
var hookSources = map[domain.HookPoint]string{
	domain.HookHref: `
    var d = Object.getOwnPropertyDescriptor(Location.prototype, 'href');
    if (d && d.set && d.configurable) {
      Object.defineProperty(Location.prototype, 'href', {
        configurable: true,
        enumerable: d.enumerable,
        get: d.get,
        set: function (v) { h.report(v, 'href'); return d.set.call(this, v); }
      });
      h.undo['href'] = function () { Object.defineProperty(Location.prototype, 'href', d); };
    }
`,
	domain.HookAssign: `
    var orig = Location.prototype.assign;
    Location.prototype.assign = function (u) { h.report(u, 'assign'); return orig.apply(this, arguments); };
    h.undo['assign'] = function () { Location.prototype.assign = orig; };
`,
	domain.HookReplace: `
    var orig = Location.prototype.replace;
    Location.prototype.replace = function (u) { h.report(u, 'replace'); return orig.apply(this, arguments); };
    h.undo['replace'] = function () { Location.prototype.replace = orig; };
`,
	domain.HookOpen: `
    var orig = w.open;
    w.open = function (u) { h.report(u, 'open'); return orig.apply(this, arguments); };
    h.undo['open'] = function () { w.open = orig; };
`,
	domain.HookHistoryPush: `
    var push = w.history.pushState, repl = w.history.replaceState;
    w.history.pushState = function () { h.report(w.location.href, 'history-push'); return push.apply(this, arguments); };
    w.history.replaceState = function () { h.report(w.location.href, 'history-push'); return repl.apply(this, arguments); };
    h.undo['history-push'] = function () { w.history.pushState = push; w.history.replaceState = repl; };
`,
	domain.HookAnchorActivate: `
    var onClick = function (ev) {
      var el = ev.target && ev.target.closest ? ev.target.closest('a[href]') : null;
      if (el) h.report(el.href, 'anchor-activate');
    };
    w.document.addEventListener('click', onClick, true);
    h.undo['anchor-activate'] = function () { w.document.removeEventListener('click', onClick, true); };
`,
}

// InstallScript builds the sniffer for the selected points. Running it twice in
// the same frame installs nothing new. Unknown points are skipped.
func InstallScript(points []domain.HookPoint) string {
	var b strings.Builder
	b.WriteString(snifferPrelude)
	for _, p := range points {
		src, ok := hookSources[p]
		if !ok {
			continue
		}
		name := strconv.Quote(string(p))
		fmt.Fprintf(&b, "  if (!h.undo[%s]) {\n    try { (function () {", name)
		b.WriteString(src)
		b.WriteString("    })(); } catch (e) {}\n  }\n")
	}
	b.WriteString(snifferEpilogue)
	return b.String()
}

// RemoveScript uninstalls one point in the frame it runs in.
func RemoveScript(point domain.HookPoint) string {
	return fmt.Sprintf("(function () { if (window.__dlHarvest) window.__dlHarvest.remove(%s); })();", strconv.Quote(string(point)))
}

type snifferReport struct {
	URI   string `json:"uri"`
	Point string `json:"point"`
	Frame string `json:"frame"`
}

// ParseReport decodes a binding payload into runtime evidence.
func ParseReport(payload string) (domain.Evidence, error) {
	var r snifferReport
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return domain.Evidence{}, fmt.Errorf("failed to decode sniffer report: %w", err)
	}
	point, ok := domain.ParseHookPoint(r.Point)
	if !ok {
		return domain.Evidence{}, fmt.Errorf("sniffer report has unknown point %q", r.Point)
	}
	return domain.Evidence{
		URI:    r.URI,
		Source: domain.SourceRuntime,
		Point:  point,
		Frame:  r.Frame,
		SeenAt: time.Now(),
	}, nil
}

// ParseConsoleReport decodes the console fallback channel. Messages without
// the sniffer prefix return false.
func ParseConsoleReport(line string) (domain.Evidence, bool) {
	payload, ok := strings.CutPrefix(line, ConsolePrefix)
	if !ok {
		return domain.Evidence{}, false
	}
	ev, err := ParseReport(payload)
	if err != nil {
		return domain.Evidence{}, false
	}
	return ev, true
}

// scanEvidence turns a script body into static-scan evidence.
func scanEvidence(scriptURL, body, frame string) []domain.Evidence {
	uris := domain.ScanScript(body)
	out := make([]domain.Evidence, 0, len(uris))
	now := time.Now()
	for _, u := range uris {
		out = append(out, domain.Evidence{
			URI:    u,
			Source: domain.SourceStaticScan,
			Script: scriptURL,
			Frame:  frame,
			SeenAt: now,
		})
	}
	return out
}

// navigationEvidence wraps a navigation the browser reported itself. Both
// drivers use it, so web navigations (page loads, iframes) are dropped the same
// way everywhere; only app schemes count.
func navigationEvidence(uri, frame string) (domain.Evidence, bool) {
	if !domain.IsRuntimeCandidate(uri) || domain.IsWebScheme(uri) {
		return domain.Evidence{}, false
	}
	return domain.Evidence{
		URI:    uri,
		Source: domain.SourceRuntime,
		Point:  domain.HookNavigate,
		Frame:  frame,
		SeenAt: time.Now(),
	}, true
}
