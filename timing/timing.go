package timing

import "time"

// periodic maintenance, each tick is jittered to [interval/2, interval]
const (
	ChordStabilizeInterval        = time.Second * 3
	ChordFixFingerInterval        = time.Second * 5
	ChordPredecessorCheckInterval = time.Second * 7
)

const (
	// a single RPC must not outlast a stabilize tick
	ChordRPCTimeout   = time.Second * 3
	ChordPingTimeout  = time.Second * 3
	ChordLeaveTimeout = time.Second * 5

	// bootstrap lookups through the seed are retried on transient failures
	ChordJoinRetryInterval = time.Second
	ChordJoinRetryAttempts = 5

	HTTPShutdownTimeout = time.Second * 10
)
