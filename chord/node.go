package chord

import (
	"context"
	"errors"
	"fmt"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"

	"go.uber.org/zap"
)

type RemoteNodeFactory func(*protocol.Node) (chord.VNode, error)

// Resolve turns a wire identity into a handle. Our own identity resolves to the local node.
func (n *LocalNode) Resolve(identity *protocol.Node) (chord.VNode, error) {
	if identity == nil {
		return nil, chord.ErrNodeNil
	}
	if identity.GetUnknown() {
		return nil, fmt.Errorf("cannot resolve an unknown node %s", identity)
	}
	if !n.Space.Contains(identity.GetId()) {
		return nil, fmt.Errorf("resolving %s: %w", identity, chord.ErrOutOfSpace)
	}
	if identity.GetId() == n.ID() {
		return n, nil
	}
	if n.ChordClient == nil {
		return nil, errors.New("cannot reach remote node without a ChordClient")
	}
	remote := &RemoteNode{
		logger:   n.Logger.With(zap.Object("peer", identity)),
		identity: identity,
		client:   n.ChordClient,
	}
	return remote.attach(n), nil
}

// Discover asks the node listening on address for its identity and returns a handle to it
func (n *LocalNode) Discover(ctx context.Context, address string) (chord.VNode, error) {
	if n.ChordClient == nil {
		return nil, errors.New("cannot reach remote node without a ChordClient")
	}
	remote, err := NewRemoteNode(ctx, n.Logger, n.ChordClient, &protocol.Node{
		Address: address,
		Unknown: true,
	})
	if err != nil {
		return nil, err
	}
	return n.Resolve(remote.Identity())
}
