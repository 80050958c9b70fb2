package chord

import (
	"context"
	"sync"
	"time"

	"go.miragespace.co/chordring/spec/chord"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type LocalNode struct {
	NodeConfig
	state *nodeState

	predecessorMu sync.RWMutex
	predecessor   chord.VNode

	successorsMu sync.RWMutex
	successors   []chord.VNode
	succListHash *atomic.Uint64
	succFailures *atomic.Uint32

	fingers    []fingerEntry
	nextFinger *atomic.Uint32

	lastStabilized *atomic.Time

	stopCtx context.Context
	stopFn  context.CancelFunc
	stopWg  sync.WaitGroup
}

var _ chord.VNode = (*LocalNode)(nil)

func NewLocalNode(conf NodeConfig) *LocalNode {
	if err := conf.Validate(); err != nil {
		panic(err)
	}
	conf.Logger = conf.Logger.With(zap.Uint64("node", conf.Identity.GetId()))

	n := &LocalNode{
		NodeConfig:     conf,
		state:          newNodeState(chord.Inactive),
		succListHash:   atomic.NewUint64(0),
		succFailures:   atomic.NewUint32(0),
		fingers:        make([]fingerEntry, conf.Space.Bits()),
		nextFinger:     atomic.NewUint32(0),
		lastStabilized: atomic.NewTime(time.Time{}),
	}
	n.stopCtx, n.stopFn = context.WithCancel(context.Background())

	return n
}
