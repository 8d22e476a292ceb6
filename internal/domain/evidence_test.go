package domain

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanScript(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "scheme literals in order",
			body: `const a = "sberbankonline://payments/p2p?x=1"; window.location = 'tinkoffbank://Main/Pay';`,
			want: []string{"sberbankonline://payments/p2p?x=1", "tinkoffbank://Main/Pay"},
		},
		{
			name: "web schemes dropped",
			body: `fetch("https://api.example/v1"); new WebSocket("wss://socket.example/live"); load("file:///etc/hosts")`,
			want: []string{},
		},
		{
			name: "short tails ignored",
			body: `x = "abc://12345";`,
			want: []string{},
		},
		{
			name: "duplicates collapse",
			body: `"bank100000000111://pay/1" + "bank100000000111://pay/1"`,
			want: []string{"bank100000000111://pay/1"},
		},
		{
			name: "case insensitive scheme",
			body: `"HTTPS://example.com/path" "Intent://ru.sberbankmobile/payments#Intent;scheme=https;end"`,
			want: []string{"Intent://ru.sberbankmobile/payments#Intent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanScript(tt.body))
		})
	}
}

func TestIsWebScheme(t *testing.T) {
	assert.True(t, IsWebScheme("https://x"))
	assert.True(t, IsWebScheme("WS://x"))
	assert.True(t, IsWebScheme("data:image/png;base64,AAAA"))
	assert.False(t, IsWebScheme("sbolonline://payments"))
	assert.False(t, IsWebScheme("mailto:someone"))
}

func TestIsRuntimeCandidate(t *testing.T) {
	assert.True(t, IsRuntimeCandidate("https://online.vtb.ru/i/ppl/79991234567"))
	assert.True(t, IsRuntimeCandidate("sbolonline://payments"))
	assert.False(t, IsRuntimeCandidate(""))
	assert.False(t, IsRuntimeCandidate("  "))
	assert.False(t, IsRuntimeCandidate("about:blank"))
	assert.False(t, IsRuntimeCandidate("javascript:void(0)"))
}

func TestObservationSet(t *testing.T) {
	set := NewObservationSet()
	assert.Equal(t, []string{}, set.Sorted())

	assert.True(t, set.Observe(Evidence{URI: "b://second", Source: SourceRuntime, Point: HookOpen}))
	assert.True(t, set.Observe(Evidence{URI: "a://first", Source: SourceStaticScan}))
	assert.False(t, set.Observe(Evidence{URI: "b://second", Source: SourceStaticScan}))
	assert.False(t, set.Observe(Evidence{}))

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"a://first", "b://second"}, set.Sorted())

	evidence := set.Evidence()
	assert.Equal(t, SourceRuntime, evidence[1].Source, "first observation is kept")
	assert.False(t, evidence[0].SeenAt.IsZero())
	assert.Equal(t, map[EvidenceSource]int{SourceRuntime: 1, SourceStaticScan: 1}, set.CountBySource())
}

func TestObservationSet_Concurrent(t *testing.T) {
	set := NewObservationSet()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				source := SourceRuntime
				if w%2 == 1 {
					source = SourceStaticScan
				}
				set.Observe(Evidence{URI: fmt.Sprintf("app://item/%03d", i), Source: source})
			}
		}(w)
	}
	wg.Wait()

	sorted := set.Sorted()
	assert.Len(t, sorted, 100)
	assert.Equal(t, "app://item/000", sorted[0])
	assert.Equal(t, "app://item/099", sorted[99])
}

func TestParseHookPoint(t *testing.T) {
	for _, p := range AllHookPoints {
		got, ok := ParseHookPoint(string(p))
		assert.True(t, ok)
		assert.Equal(t, p, got)
	}
	_, ok := ParseHookPoint("navigate")
	assert.False(t, ok)
}
