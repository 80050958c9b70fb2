package chord

import (
	"context"
	"errors"
	"fmt"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/timing"

	"go.uber.org/zap"
)

func (n *LocalNode) ID() uint64 {
	return n.NodeConfig.Identity.GetId()
}

func (n *LocalNode) Identity() *protocol.Node {
	return n.NodeConfig.Identity
}

func (n *LocalNode) checkNodeState(leavingIsError bool) error {
	state := n.state.Get()
	switch state {
	case chord.Inactive:
		return chord.ErrNodeNotStarted
	case chord.Leaving:
		// get around during leaving routine, successor will ping us
		// before replacing their predecessor pointer to our predecessor
		if !leavingIsError {
			return nil
		}
		return chord.ErrNodeGone
	case chord.Left:
		return chord.ErrNodeGone
	default:
		return nil
	}
}

func (n *LocalNode) Ping(_ context.Context) error {
	return n.checkNodeState(true)
}

func sameNode(a, b chord.VNode) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

func (n *LocalNode) Notify(ctx context.Context, candidate chord.VNode) error {
	if err := n.checkNodeState(false); err != nil {
		return err
	}
	if candidate == nil {
		return chord.ErrNodeNil
	}
	if !n.Space.Contains(candidate.ID()) {
		return fmt.Errorf("predecessor %d: %w", candidate.ID(), chord.ErrOutOfSpace)
	}

	old := n.getPredecessor()
	if sameNode(old, candidate) {
		return nil
	}

	adopt := old == nil || chord.BetweenStrict(old.ID(), candidate.ID(), n.ID())
	if !adopt && old.ID() != n.ID() {
		pingCtx, cancel := context.WithTimeout(ctx, timing.ChordPingTimeout)
		err := old.Ping(pingCtx)
		cancel()
		if err != nil {
			n.Logger.Debug("Current predecessor is not responding, replacing via Notify",
				zap.Object("predecessor", old.Identity()),
				zap.Error(err),
			)
			adopt = true
		}
	}
	if !adopt {
		return nil
	}

	n.predecessorMu.Lock()
	curr := n.predecessor
	if !sameNode(curr, old) && curr != nil && !chord.BetweenStrict(curr.ID(), candidate.ID(), n.ID()) {
		// someone else updated it while we were pinging
		n.predecessorMu.Unlock()
		return nil
	}
	n.predecessor = candidate
	n.predecessorMu.Unlock()

	if curr == nil {
		n.Logger.Info("Discovered new predecessor via Notify",
			zap.String("previous", "nil"),
			zap.Object("predecessor", candidate.Identity()),
		)
	} else {
		n.Logger.Info("Discovered new predecessor via Notify",
			zap.Object("previous", curr.Identity()),
			zap.Object("predecessor", candidate.Identity()),
		)
	}

	return nil
}

func (n *LocalNode) getSuccessor() chord.VNode {
	n.successorsMu.RLock()
	defer n.successorsMu.RUnlock()
	if len(n.successors) == 0 {
		return nil
	}
	return n.successors[0]
}

func (n *LocalNode) getSuccessors() []chord.VNode {
	n.successorsMu.RLock()
	defer n.successorsMu.RUnlock()
	list := make([]chord.VNode, 0, len(n.successors))
	for _, s := range n.successors {
		if s == nil {
			continue
		}
		list = append(list, s)
	}
	return list
}

func (n *LocalNode) getPredecessor() chord.VNode {
	n.predecessorMu.RLock()
	p := n.predecessor
	n.predecessorMu.RUnlock()
	return p
}

// successorOf returns the first successor of current that is not known to have failed
func (n *LocalNode) successorOf(ctx context.Context, current chord.VNode, failed map[uint64]bool) (chord.VNode, error) {
	var (
		list []chord.VNode
		err  error
	)
	if current.ID() == n.ID() {
		list = n.getSuccessors()
	} else {
		list, err = current.GetSuccessors(ctx)
		if err != nil {
			return nil, err
		}
	}
	if len(list) == 0 {
		return nil, chord.ErrNodeNoSuccessor
	}
	for _, succ := range list {
		if succ == nil || failed[succ.ID()] {
			continue
		}
		return succ, nil
	}
	return nil, chord.ErrAllRoutesExhausted
}

func (n *LocalNode) closestPreceding(ctx context.Context, current chord.VNode, key uint64, failed map[uint64]bool) (chord.VNode, error) {
	if current.ID() == n.ID() {
		return n.closestPrecedingFinger(key, failed), nil
	}
	return current.ClosestPrecedingFinger(ctx, key)
}

// findPredecessor walks the ring from us toward key and returns the node whose successor
// is responsible for key, along with that successor. observe, if not nil, is called
// with every node visited, in order.
func (n *LocalNode) findPredecessor(ctx context.Context, key uint64, observe func(chord.VNode)) (chord.VNode, chord.VNode, error) {
	var (
		failed              = make(map[uint64]bool)
		current chord.VNode = n
		maxHops             = 2 * n.Space.Bits()
	)
	for hop := 0; hop < maxHops; hop++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if observe != nil {
			observe(current)
		}

		succ, err := n.successorOf(ctx, current, failed)
		if err != nil {
			if current.ID() == n.ID() {
				return nil, nil, err
			}
			n.Logger.Debug("Lookup hop failed, restarting from local node",
				zap.Object("hop", current.Identity()),
				zap.Uint64("key", key),
				zap.Error(err),
			)
			failed[current.ID()] = true
			current = n
			continue
		}

		if chord.BetweenInclusiveHigh(current.ID(), key, succ.ID()) {
			lookupHops.Observe(float64(hop))
			return current, succ, nil
		}

		next, err := n.closestPreceding(ctx, current, key, failed)
		if err != nil {
			failed[current.ID()] = true
			current = n
			continue
		}
		// next must strictly close the distance to key, otherwise take the successor
		if next == nil || failed[next.ID()] || n.Space.Distance(next.ID(), key) >= n.Space.Distance(current.ID(), key) {
			next = succ
		}
		current = next
	}
	return nil, nil, fmt.Errorf("looking up %d: %w", key, chord.ErrLookupFailed)
}

func (n *LocalNode) FindSuccessor(ctx context.Context, key uint64) (chord.VNode, error) {
	if err := n.checkNodeState(false); err != nil {
		return nil, err
	}
	if !n.Space.Contains(key) {
		return nil, fmt.Errorf("key %d: %w", key, chord.ErrOutOfSpace)
	}
	_, succ, err := n.findPredecessor(ctx, key, nil)
	if err != nil {
		observeLookupFailure(err)
		return nil, err
	}
	return succ, nil
}

func (n *LocalNode) ClosestPrecedingFinger(_ context.Context, key uint64) (chord.VNode, error) {
	if err := n.checkNodeState(false); err != nil {
		return nil, err
	}
	if !n.Space.Contains(key) {
		return nil, fmt.Errorf("key %d: %w", key, chord.ErrOutOfSpace)
	}
	return n.closestPrecedingFinger(key, nil), nil
}

func (n *LocalNode) GetSuccessors(_ context.Context) ([]chord.VNode, error) {
	if err := n.checkNodeState(false); err != nil {
		return nil, err
	}
	return n.getSuccessors(), nil
}

func (n *LocalNode) GetPredecessor(_ context.Context) (chord.VNode, error) {
	if err := n.checkNodeState(false); err != nil {
		return nil, err
	}
	return n.getPredecessor(), nil
}

// Lookup returns the node responsible for storing key
func (n *LocalNode) Lookup(ctx context.Context, key []byte) (chord.VNode, error) {
	return n.FindSuccessor(ctx, n.Space.Hash(key))
}

func observeLookupFailure(err error) {
	switch {
	case errors.Is(err, chord.ErrAllRoutesExhausted):
		lookupFailures.WithLabelValues("exhausted").Inc()
	case errors.Is(err, chord.ErrLookupFailed):
		lookupFailures.WithLabelValues("hop_limit").Inc()
	case errors.Is(err, chord.ErrNodeNoSuccessor):
		lookupFailures.WithLabelValues("no_successor").Inc()
	default:
		lookupFailures.WithLabelValues("other").Inc()
	}
}
