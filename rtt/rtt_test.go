package rtt

import (
	"testing"
	"time"

	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/spec/rtt"

	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	as := require.New(t)

	peer := rtt.PeerKey(&protocol.Node{Id: 42, Address: "127.0.0.1:1234"})
	as.Equal("127.0.0.1:1234/42", peer)

	tr := NewTracker(3)
	as.Nil(tr.Window(peer, time.Minute))

	tr.Observe(peer, time.Millisecond)
	tr.Observe(peer, time.Millisecond*3)
	tr.Observe(peer, -1)

	s := tr.Window(peer, time.Minute)
	as.NotNil(s)
	as.Equal(2, s.Samples)
	as.Equal(time.Millisecond, s.Min)
	as.Equal(time.Millisecond*3, s.Max)
	as.Equal(time.Millisecond*2, s.Mean)
	as.False(s.Last.Before(s.First))
	as.Contains(s.String(), "2 samples")

	// the oldest sample is overwritten once the window is full
	tr.Observe(peer, time.Millisecond*5)
	tr.Observe(peer, time.Millisecond*5)
	s = tr.Window(peer, time.Minute)
	as.Equal(3, s.Samples)
	as.Equal(time.Millisecond*3, s.Min)

	tr.Forget(peer)
	as.Nil(tr.Window(peer, time.Minute))
}

func TestTrackerWindow(t *testing.T) {
	as := require.New(t)

	tr := NewTracker(4)
	tr.Observe("peer/1", time.Millisecond)

	time.Sleep(time.Millisecond * 20)
	as.Nil(tr.Window("peer/1", time.Millisecond*5))
	as.NotNil(tr.Window("peer/1", time.Minute))
}

func TestUnknownPeerKey(t *testing.T) {
	as := require.New(t)

	key := rtt.PeerKey(&protocol.Node{Address: "127.0.0.1:1234", Unknown: true})
	as.Equal("127.0.0.1:1234/?", key)
	as.Equal("", (*rtt.Statistics)(nil).String())
}
