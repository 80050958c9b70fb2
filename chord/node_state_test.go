package chord

import (
	"sync"
	"testing"

	"go.miragespace.co/chordring/spec/chord"

	"github.com/stretchr/testify/require"
)

func TestNodeStateTransition(t *testing.T) {
	as := require.New(t)

	s := newNodeState(chord.Inactive)
	as.Equal(chord.Inactive, s.Get())

	curr, ok := s.Transition(chord.Active, chord.Leaving)
	as.False(ok)
	as.Equal(chord.Inactive, curr)

	curr, ok = s.Transition(chord.Inactive, chord.Joining)
	as.True(ok)
	as.Equal(chord.Joining, curr)

	s.Set(chord.Active)
	as.Equal(chord.Active, s.Get())
	as.Equal([]chord.State{chord.Inactive, chord.Joining, chord.Active}, s.History())
	as.GreaterOrEqual(s.Since().Nanoseconds(), int64(0))
}

func TestNodeStateConcurrentTransition(t *testing.T) {
	as := require.New(t)

	s := newNodeState(chord.Active)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Transition(chord.Active, chord.Leaving); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	as.Equal(1, winners)
	as.Equal(chord.Leaving, s.Get())
	as.Len(s.History(), 2)
}
