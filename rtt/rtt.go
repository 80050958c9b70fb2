package rtt

import (
	"sync"
	"time"

	"go.miragespace.co/chordring/spec/rtt"

	"github.com/montanaflynn/stats"
	"github.com/zhangyunhao116/skipmap"
)

type sample struct {
	at      time.Time
	latency time.Duration
}

// history is a fixed size ring of the most recent samples of one peer
type history struct {
	mu      sync.RWMutex
	samples []sample
	next    int
	full    bool
}

func (h *history) add(s sample) {
	h.mu.Lock()
	h.samples[h.next] = s
	h.next = (h.next + 1) % len(h.samples)
	if h.next == 0 {
		h.full = true
	}
	h.mu.Unlock()
}

// since returns the samples taken after cutoff, oldest first
func (h *history) since(cutoff time.Time) []sample {
	h.mu.RLock()
	defer h.mu.RUnlock()

	start, count := 0, h.next
	if h.full {
		start, count = h.next, len(h.samples)
	}
	out := make([]sample, 0, count)
	for i := 0; i < count; i++ {
		s := h.samples[(start+i)%len(h.samples)]
		if s.at.After(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// Tracker keeps the last few RPC round trips of every peer
type Tracker struct {
	peers  *skipmap.StringMap[*history]
	window int
}

var _ rtt.Recorder = (*Tracker)(nil)

// NewTracker keeps up to window samples per peer
func NewTracker(window int) *Tracker {
	if window < 1 {
		window = 1
	}
	return &Tracker{
		peers:  skipmap.NewString[*history](),
		window: window,
	}
}

func (t *Tracker) Observe(peer string, latency time.Duration) {
	if latency < 0 {
		return
	}
	h, _ := t.peers.LoadOrStoreLazy(peer, func() *history {
		return &history{
			samples: make([]sample, t.window),
		}
	})
	h.add(sample{
		at:      time.Now(),
		latency: latency,
	})
}

func (t *Tracker) Window(peer string, over time.Duration) *rtt.Statistics {
	h, ok := t.peers.Load(peer)
	if !ok {
		return nil
	}
	samples := h.since(time.Now().Add(-over))
	if len(samples) == 0 {
		return nil
	}

	values := make(stats.Float64Data, len(samples))
	for i, s := range samples {
		values[i] = float64(s.latency)
	}
	min, _ := values.Min()
	max, _ := values.Max()
	mean, _ := values.Mean()
	jitter, _ := values.StandardDeviation()

	return &rtt.Statistics{
		Samples: len(samples),
		First:   samples[0].at,
		Last:    samples[len(samples)-1].at,
		Min:     time.Duration(min),
		Mean:    time.Duration(mean),
		Max:     time.Duration(max),
		Jitter:  time.Duration(jitter),
	}
}

func (t *Tracker) Forget(peer string) {
	t.peers.Delete(peer)
}
