package chord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/spec/rpc"
	"go.miragespace.co/chordring/spec/rtt"
	"go.miragespace.co/chordring/timing"

	"go.uber.org/zap"
)

// RemoteNode is a handle to a peer reached through a ChordClient. Identities returned by
// the peer that match the attached local node resolve to the local node itself.
type RemoteNode struct {
	logger   *zap.Logger
	identity *protocol.Node
	client   rpc.ChordClient
	local    chord.VNode
	rtt      rtt.Recorder
	timeout  time.Duration
}

var _ chord.VNode = (*RemoteNode)(nil)

// NewRemoteNode creates a handle to identity. If only the address is known, the identity
// is discovered with an Identity call first.
func NewRemoteNode(ctx context.Context, logger *zap.Logger, client rpc.ChordClient, identity *protocol.Node) (*RemoteNode, error) {
	if identity == nil {
		return nil, chord.ErrNodeNil
	}
	if client == nil {
		return nil, errors.New("cannot create remote node without a ChordClient")
	}
	n := &RemoteNode{
		logger:   logger,
		identity: identity,
		client:   client,
		timeout:  timing.ChordRPCTimeout,
	}
	if identity.GetUnknown() {
		callCtx, cancel := n.callContext(ctx, n.timeout)
		defer cancel()

		resp, err := n.client.Identity(callCtx, &protocol.IdentityRequest{})
		if err != nil {
			return nil, fmt.Errorf("discovering identity of %s: %w", identity.GetAddress(), err)
		}
		discovered := resp.GetIdentity()
		if discovered == nil || discovered.GetUnknown() {
			return nil, fmt.Errorf("discovering identity of %s: %w", identity.GetAddress(), chord.ErrNodeNil)
		}
		n.identity = discovered
	}
	n.logger = logger.With(zap.Object("peer", n.identity))
	return n, nil
}

// attach returns a copy of the handle bound to local, inheriting its timeout and RTT recorder
func (n *RemoteNode) attach(local *LocalNode) *RemoteNode {
	return &RemoteNode{
		logger:   n.logger,
		identity: n.identity,
		client:   n.client,
		local:    local,
		rtt:      local.NodesRTT,
		timeout:  local.RPCTimeout,
	}
}

func (n *RemoteNode) ID() uint64 {
	return n.identity.GetId()
}

func (n *RemoteNode) Identity() *protocol.Node {
	return n.identity
}

func (n *RemoteNode) callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx = rpc.WithNode(ctx, n.identity)
	return context.WithTimeout(ctx, timeout)
}

func (n *RemoteNode) record(start time.Time) {
	if n.rtt == nil {
		return
	}
	n.rtt.Observe(rtt.PeerKey(n.identity), time.Since(start))
}

// resolve turns an identity returned by the peer into a handle
func (n *RemoteNode) resolve(identity *protocol.Node) (chord.VNode, error) {
	if identity == nil {
		return nil, nil
	}
	if identity.GetUnknown() {
		return nil, fmt.Errorf("peer %s returned an unknown node", n.identity)
	}
	if n.local != nil && identity.GetId() == n.local.ID() {
		return n.local, nil
	}
	if identity.GetId() == n.ID() {
		return n, nil
	}
	return &RemoteNode{
		logger:   n.logger.With(zap.Object("peer", identity)),
		identity: identity,
		client:   n.client,
		local:    n.local,
		rtt:      n.rtt,
		timeout:  n.timeout,
	}, nil
}

func (n *RemoteNode) Ping(ctx context.Context) error {
	timeout := timing.ChordPingTimeout
	if n.timeout < timeout {
		timeout = n.timeout
	}
	ctx, cancel := n.callContext(ctx, timeout)
	defer cancel()

	start := time.Now()
	if _, err := n.client.Ping(ctx, &protocol.PingRequest{}); err != nil {
		return err
	}
	n.record(start)
	return nil
}

func (n *RemoteNode) Notify(ctx context.Context, predecessor chord.VNode) error {
	if predecessor == nil {
		return chord.ErrNodeNil
	}
	ctx, cancel := n.callContext(ctx, n.timeout)
	defer cancel()

	start := time.Now()
	if _, err := n.client.Notify(ctx, &protocol.NotifyRequest{
		Predecessor: predecessor.Identity(),
	}); err != nil {
		return err
	}
	n.record(start)
	return nil
}

func (n *RemoteNode) FindSuccessor(ctx context.Context, key uint64) (chord.VNode, error) {
	ctx, cancel := n.callContext(ctx, n.timeout)
	defer cancel()

	start := time.Now()
	resp, err := n.client.FindSuccessor(ctx, &protocol.FindSuccessorRequest{
		Key: key,
	})
	if err != nil {
		return nil, err
	}
	n.record(start)

	succ, err := n.resolve(resp.GetSuccessor())
	if err != nil {
		return nil, err
	}
	if succ == nil {
		return nil, chord.ErrNodeNoSuccessor
	}
	return succ, nil
}

func (n *RemoteNode) ClosestPrecedingFinger(ctx context.Context, key uint64) (chord.VNode, error) {
	ctx, cancel := n.callContext(ctx, n.timeout)
	defer cancel()

	start := time.Now()
	resp, err := n.client.ClosestPrecedingFinger(ctx, &protocol.ClosestPrecedingFingerRequest{
		Key: key,
	})
	if err != nil {
		return nil, err
	}
	n.record(start)

	finger, err := n.resolve(resp.GetFinger())
	if err != nil {
		return nil, err
	}
	if finger == nil {
		return n, nil
	}
	return finger, nil
}

func (n *RemoteNode) GetSuccessors(ctx context.Context) ([]chord.VNode, error) {
	ctx, cancel := n.callContext(ctx, n.timeout)
	defer cancel()

	start := time.Now()
	resp, err := n.client.GetSuccessors(ctx, &protocol.GetSuccessorsRequest{})
	if err != nil {
		return nil, err
	}
	n.record(start)

	identities := resp.GetSuccessors()
	succList := make([]chord.VNode, 0, len(identities))
	for _, identity := range identities {
		succ, err := n.resolve(identity)
		if err != nil {
			n.logger.Warn("Ignoring invalid successor in successor list", zap.Error(err))
			continue
		}
		if succ == nil {
			continue
		}
		succList = append(succList, succ)
	}
	return succList, nil
}

func (n *RemoteNode) GetPredecessor(ctx context.Context) (chord.VNode, error) {
	ctx, cancel := n.callContext(ctx, n.timeout)
	defer cancel()

	start := time.Now()
	resp, err := n.client.GetPredecessor(ctx, &protocol.GetPredecessorRequest{})
	if err != nil {
		return nil, err
	}
	n.record(start)

	return n.resolve(resp.GetPredecessor())
}
