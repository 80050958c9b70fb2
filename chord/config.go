package chord

import (
	"errors"
	"time"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/spec/rpc"
	"go.miragespace.co/chordring/spec/rtt"
	"go.miragespace.co/chordring/timing"

	"go.uber.org/zap"
)

type NodeConfig struct {
	Logger   *zap.Logger
	Identity *protocol.Node
	Space    chord.Space
	// ChordClient is used to reach peers by address. May be nil when every peer is in-process.
	ChordClient rpc.ChordClient
	NodesRTT    rtt.Recorder

	SuccessorListSize         int
	StabilizeFailureThreshold int

	StabilizeInterval        time.Duration
	FixFingerInterval        time.Duration
	PredecessorCheckInterval time.Duration
	RPCTimeout               time.Duration
}

// DefaultNodeConfig returns a config with the production intervals. Logger and Identity still need to be set.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Space:                     chord.DefaultSpace,
		SuccessorListSize:         chord.ExtendedSuccessorEntries,
		StabilizeFailureThreshold: 3,
		StabilizeInterval:         timing.ChordStabilizeInterval,
		FixFingerInterval:         timing.ChordFixFingerInterval,
		PredecessorCheckInterval:  timing.ChordPredecessorCheckInterval,
		RPCTimeout:                timing.ChordRPCTimeout,
	}
}

func (c *NodeConfig) Validate() error {
	if c == nil {
		return errors.New("nil NodeConfig")
	}
	if c.Logger == nil {
		return errors.New("nil Logger")
	}
	if c.Identity == nil {
		return errors.New("nil Identity")
	}
	if c.Identity.GetUnknown() {
		return errors.New("Identity must have a known ID")
	}
	if !c.Space.Valid() {
		return errors.New("invalid Space, must be between 1 and 64 bits")
	}
	if c.Identity.GetId() > c.Space.Max() {
		return errors.New("invalid Identity ID, outside of identifier space")
	}
	if c.SuccessorListSize < 1 {
		return errors.New("invalid SuccessorListSize, must be positive")
	}
	if c.StabilizeFailureThreshold < 1 {
		return errors.New("invalid StabilizeFailureThreshold, must be positive")
	}
	if c.StabilizeInterval <= 0 {
		return errors.New("invalid StabilizeInterval, must be positive")
	}
	if c.FixFingerInterval <= 0 {
		return errors.New("invalid FixFingerInterval, must be positive")
	}
	if c.PredecessorCheckInterval <= 0 {
		return errors.New("invalid PredecessorCheckInterval, must be positive")
	}
	if c.RPCTimeout <= 0 {
		return errors.New("invalid RPCTimeout, must be positive")
	}
	return nil
}
