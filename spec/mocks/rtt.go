//go:build !no_mocks
// +build !no_mocks

package mocks

import (
	"time"

	"go.miragespace.co/chordring/spec/rtt"

	"github.com/stretchr/testify/mock"
)

type Recorder struct {
	mock.Mock
}

var _ rtt.Recorder = (*Recorder)(nil)

func (m *Recorder) Observe(peer string, latency time.Duration) {
	m.Called(peer, latency)
}

func (m *Recorder) Window(peer string, over time.Duration) *rtt.Statistics {
	args := m.Called(peer, over)
	s := args.Get(0)
	if s == nil {
		return nil
	}
	return s.(*rtt.Statistics)
}

func (m *Recorder) Forget(peer string) {
	m.Called(peer)
}
