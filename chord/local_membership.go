package chord

import (
	"context"
	"fmt"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/timing"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// Create bootstraps a new ring with this node as the only member
func (n *LocalNode) Create() error {
	if _, ok := n.state.Transition(chord.Inactive, chord.Joining); !ok {
		return fmt.Errorf("node is not inactive: %w", chord.ErrJoinInvalidState)
	}

	n.Logger.Info("Creating new Chord ring")

	successors := chord.MakeSuccList(n, []chord.VNode{}, n.SuccessorListSize)
	n.successorsMu.Lock()
	n.updateSuccessorsList(n.hash(successors), successors)
	n.successorsMu.Unlock()

	n.predecessorMu.Lock()
	n.predecessor = n
	n.predecessorMu.Unlock()

	for i := range n.fingers {
		n.setFinger(i, n)
	}

	n.startTasks()

	n.state.Set(chord.Active)

	return nil
}

// Join the ring that seed is a member of. A nil seed creates a new ring.
func (n *LocalNode) Join(ctx context.Context, seed chord.VNode) error {
	if seed == nil {
		return n.Create()
	}
	if seed.ID() == n.ID() {
		return fmt.Errorf("joining via %s: %w", seed.Identity(), chord.ErrIdentifierCollision)
	}
	if remote, ok := seed.(*RemoteNode); ok {
		seed = remote.attach(n)
	}

	if _, ok := n.state.Transition(chord.Inactive, chord.Joining); !ok {
		return fmt.Errorf("node is not inactive: %w", chord.ErrJoinInvalidState)
	}

	successor, err := n.executeJoin(ctx, seed)
	if err != nil {
		n.state.Transition(chord.Joining, chord.Inactive)
		return err
	}
	if successor.ID() == n.ID() {
		n.state.Transition(chord.Joining, chord.Inactive)
		return fmt.Errorf("joining via %s: %w", seed.Identity(), chord.ErrIdentifierCollision)
	}

	successors := []chord.VNode{successor}
	if list, err := successor.GetSuccessors(ctx); err == nil {
		successors = chord.MakeSuccList(successor, list, n.SuccessorListSize)
	} else {
		n.Logger.Warn("Unable to fetch successor list from successor, starting with successor only", zap.Error(err))
	}

	n.successorsMu.Lock()
	n.updateSuccessorsList(n.hash(successors), successors)
	n.successorsMu.Unlock()

	n.initFingers(ctx, seed, successor)

	if _, ok := n.state.Transition(chord.Joining, chord.Active); !ok {
		return fmt.Errorf("node was stopped while joining: %w", chord.ErrNodeGone)
	}

	n.startTasks()

	n.Logger.Info("Successfully joined Chord ring",
		zap.Object("via", seed.Identity()),
		zap.Object("successor", successor.Identity()),
	)

	return nil
}

func (n *LocalNode) executeJoin(ctx context.Context, seed chord.VNode) (chord.VNode, error) {
	return retry.DoWithData(func() (chord.VNode, error) {
		n.Logger.Info("Joining Chord ring",
			zap.String("via", seed.Identity().GetAddress()),
		)
		succ, err := seed.FindSuccessor(ctx, n.ID())
		if err != nil {
			return nil, err
		}
		if succ == nil {
			return nil, chord.ErrNodeNoSuccessor
		}
		return succ, nil
	},
		retry.Context(ctx),
		retry.Attempts(timing.ChordJoinRetryAttempts),
		retry.Delay(timing.ChordJoinRetryInterval),
		retry.LastErrorOnly(true),
		retry.RetryIf(chord.ErrorIsRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			n.Logger.Warn("Retrying on join error", zap.Uint("attempt", attempt), zap.Error(err))
		}),
	)
}

// initFingers fills the finger table using the seed. An entry whose start is already
// covered by the previous entry is copied forward, saving a lookup.
func (n *LocalNode) initFingers(ctx context.Context, seed, successor chord.VNode) {
	n.setFinger(0, successor)
	prev := successor
	for i := 1; i < len(n.fingers); i++ {
		start := n.Space.Start(n.ID(), i)
		if chord.BetweenInclusiveHigh(n.ID(), start, prev.ID()) {
			n.setFinger(i, prev)
			continue
		}
		f, err := seed.FindSuccessor(ctx, start)
		if err != nil || f == nil {
			n.Logger.Debug("Unable to initialize finger entry, copying previous entry",
				zap.Int("index", i),
				zap.Error(err),
			)
			f = prev
		}
		n.setFinger(i, f)
		prev = f
	}
}

// Leave the ring gracefully. The successor is told about our predecessor directly
// so it does not have to wait for stabilization to repair around us.
func (n *LocalNode) Leave() {
	if _, ok := n.state.Transition(chord.Active, chord.Leaving); !ok {
		return
	}

	n.Logger.Info("Leaving Chord ring")

	n.stopTasks()

	pre := n.getPredecessor()
	succ := n.getSuccessor()
	if pre != nil && succ != nil && pre.ID() != n.ID() && succ.ID() != n.ID() {
		ctx, cancel := context.WithTimeout(context.Background(), timing.ChordLeaveTimeout)
		if err := succ.Notify(ctx, pre); err != nil {
			n.Logger.Warn("Unable to hand our predecessor over to successor", zap.Object("successor", succ.Identity()), zap.Error(err))
		}
		cancel()
	}

	n.state.Set(chord.Left)

	n.Logger.Info("Left Chord ring")
}

// Stop halts the node without telling anyone, as if the process had crashed
func (n *LocalNode) Stop() {
	switch n.state.Get() {
	case chord.Inactive, chord.Left:
		return
	}
	n.state.Set(chord.Left)
	n.stopTasks()

	n.Logger.Info("Stopped Chord node without leaving")
}

func (n *LocalNode) State() chord.State {
	return n.state.Get()
}
