package rtt

import (
	"fmt"
	"strconv"
	"time"

	"go.miragespace.co/chordring/spec/protocol"
)

// Recorder tracks round trip times of ring RPCs, keyed by PeerKey
type Recorder interface {
	Observe(peer string, latency time.Duration)
	Window(peer string, over time.Duration) *Statistics
	Forget(peer string)
}

// Statistics summarizes the samples of one peer that fall in a window
type Statistics struct {
	Samples int
	First   time.Time
	Last    time.Time
	Min     time.Duration
	Mean    time.Duration
	Max     time.Duration
	Jitter  time.Duration
}

func (s *Statistics) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%d samples, min/mean/max/jitter = %v/%v/%v/%v",
		s.Samples,
		s.Min.Round(time.Microsecond),
		s.Mean.Round(time.Microsecond),
		s.Max.Round(time.Microsecond),
		s.Jitter.Round(time.Microsecond),
	)
}

// PeerKey identifies a peer by address and id, so a restarted node with a new
// identity on the same address starts a fresh history
func PeerKey(node *protocol.Node) string {
	if node.GetUnknown() {
		return node.GetAddress() + "/?"
	}
	return node.GetAddress() + "/" + strconv.FormatUint(node.GetId(), 10)
}
