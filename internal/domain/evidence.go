package domain

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// EvidenceSource is the channel an observation came through.
type EvidenceSource string

const (
	SourceRuntime    EvidenceSource = "runtime"
	SourceStaticScan EvidenceSource = "static-scan"
)

// HookPoint names one navigation egress the sniffer can intercept.
type HookPoint string

const (
	HookHref           HookPoint = "href"
	HookAssign         HookPoint = "assign"
	HookReplace        HookPoint = "replace"
	HookOpen           HookPoint = "open"
	HookHistoryPush    HookPoint = "history-push"
	HookAnchorActivate HookPoint = "anchor-activate"

	// HookNavigate marks navigations reported by the browser itself rather than
	// by an injected hook.
	HookNavigate HookPoint = "navigate"
)

// AllHookPoints is the default interception set, in install order.
var AllHookPoints = []HookPoint{HookHref, HookAssign, HookReplace, HookOpen, HookHistoryPush, HookAnchorActivate}

// ParseHookPoint validates an injectable hook point name.
func ParseHookPoint(s string) (HookPoint, bool) {
	for _, p := range AllHookPoints {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Evidence is one URI observed during a harvest session. It feeds update
// decisions only; nothing writes it back into the registry.
type Evidence struct {
	URI    string         `json:"uri"`
	Source EvidenceSource `json:"source"`
	Point  HookPoint      `json:"point,omitempty"`
	Frame  string         `json:"frame,omitempty"`
	Script string         `json:"script,omitempty"`
	SeenAt time.Time      `json:"seen_at"`
}

// EvidenceSink receives observations from both harvest channels.
type EvidenceSink interface {
	Observe(ev Evidence) bool
}

// ObservationSet is the session-scoped accumulator. Observe is idempotent and
// order independent; the first observation of a URI is the one kept.
type ObservationSet struct {
	mu    sync.Mutex
	seen  map[string]Evidence
	order []string
}

// NewObservationSet creates an empty accumulator.
func NewObservationSet() *ObservationSet {
	return &ObservationSet{seen: make(map[string]Evidence)}
}

// Observe records ev unless its URI is already known. It reports whether the
// URI was new.
func (s *ObservationSet) Observe(ev Evidence) bool {
	if ev.URI == "" {
		return false
	}
	if ev.SeenAt.IsZero() {
		ev.SeenAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[ev.URI]; ok {
		return false
	}
	s.seen[ev.URI] = ev
	s.order = append(s.order, ev.URI)
	return true
}

// Len returns the number of distinct URIs.
func (s *ObservationSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Sorted returns the distinct URIs in lexicographic order. The result is never nil.
func (s *ObservationSet) Sorted() []string {
	s.mu.Lock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	s.mu.Unlock()
	sort.Strings(out)
	return out
}

// Evidence returns every kept observation ordered by URI.
func (s *ObservationSet) Evidence() []Evidence {
	uris := s.Sorted()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Evidence, 0, len(uris))
	for _, u := range uris {
		out = append(out, s.seen[u])
	}
	return out
}

// CountBySource tallies kept observations per channel.
func (s *ObservationSet) CountBySource() map[EvidenceSource]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[EvidenceSource]int, 2)
	for _, ev := range s.seen {
		out[ev.Source]++
	}
	return out
}

var schemeLiteral = regexp.MustCompile(`(?i)[a-z][\w+.-]*://[\w@%./#?+=~-]{6,}`)

var webSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"file":  true,
}

// IsWebScheme reports whether uri uses a standard web scheme that can never be
// an app deep link.
func IsWebScheme(uri string) bool {
	if strings.HasPrefix(strings.ToLower(uri), "data:image") {
		return true
	}
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return false
	}
	return webSchemes[strings.ToLower(scheme)]
}

// ScanScript extracts scheme URI literals from a script body, dropping web
// schemes. Matches are returned in order of appearance without duplicates.
func ScanScript(body string) []string {
	matches := schemeLiteral.FindAllString(body, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if IsWebScheme(m) || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// IsRuntimeCandidate filters runtime-hook reports. Only empty values and
// about:/javascript: pseudo URLs are dropped, since universal links arrive as https.
func IsRuntimeCandidate(uri string) bool {
	u := strings.ToLower(strings.TrimSpace(uri))
	if u == "" {
		return false
	}
	return !strings.HasPrefix(u, "about:") && !strings.HasPrefix(u, "javascript:")
}
