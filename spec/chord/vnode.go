package chord

import (
	"context"

	"go.miragespace.co/chordring/spec/protocol"
)

// VNode is a handle to a ring member, either this process (dispatched locally)
// or a peer reached through RPC. Handles never own the state of the node they
// refer to and may go stale at any time.
type VNode interface {
	ID() uint64
	Identity() *protocol.Node

	Ping(ctx context.Context) error
	Notify(ctx context.Context, predecessor VNode) error

	FindSuccessor(ctx context.Context, key uint64) (VNode, error)
	ClosestPrecedingFinger(ctx context.Context, key uint64) (VNode, error)
	GetSuccessors(ctx context.Context) ([]VNode, error)
	GetPredecessor(ctx context.Context) (VNode, error)
}

// Lookup returns the node responsible for key, asking the ring through vnode
func Lookup(ctx context.Context, vnode VNode, space Space, key []byte) (VNode, error) {
	if vnode == nil {
		return nil, ErrNodeNil
	}
	return vnode.FindSuccessor(ctx, space.Hash(key))
}
