package chord

import (
	"runtime"
	"sync/atomic"
	"time"

	"go.miragespace.co/chordring/spec/chord"

	"github.com/zhangyunhao116/skipmap"
)

type stateTransition struct {
	state chord.State
	at    time.Time
}

// nodeState packs a transition counter with the current state so that
// concurrent transitions from the same state cannot both succeed
type nodeState struct {
	state   atomic.Uint64
	history *skipmap.Uint64Map[stateTransition]
}

func newNodeState(initial chord.State) *nodeState {
	s := &nodeState{
		history: skipmap.NewUint64[stateTransition](),
	}
	s.state.Store(uint64(initial))
	s.history.Store(0, stateTransition{state: initial, at: time.Now()})
	return s
}

func (s *nodeState) Transition(exp chord.State, nxt chord.State) (chord.State, bool) {
	curr := s.state.Load()
	if chord.State(curr&0b1111) != exp {
		return chord.State(curr & 0b1111), false
	}
	nextIndex := (curr >> 4) + 1
	if s.state.CompareAndSwap(curr, (nextIndex<<4)|uint64(nxt)) {
		s.history.Store(nextIndex, stateTransition{state: nxt, at: time.Now()})
		return nxt, true
	}
	return s.Get(), false
}

func (s *nodeState) Set(val chord.State) {
	for {
		if _, ok := s.Transition(s.Get(), val); ok {
			break
		}
		runtime.Gosched()
	}
}

func (s *nodeState) Get() chord.State {
	return chord.State(s.state.Load() & 0b1111)
}

func (s *nodeState) History() []chord.State {
	h := make([]chord.State, 0)
	s.history.Range(func(_ uint64, t stateTransition) bool {
		h = append(h, t.state)
		return true
	})
	return h
}

// Since returns how long the node has been in its current state
func (s *nodeState) Since() time.Duration {
	curr := s.state.Load()
	t, ok := s.history.Load(curr >> 4)
	if !ok {
		return 0
	}
	return time.Since(t.at)
}
