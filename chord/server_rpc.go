package chord

import (
	"context"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/spec/rpc"
)

// Server exposes a local node through the ring RPC contract
type Server struct {
	LocalNode chord.VNode
	Factory   RemoteNodeFactory
}

var _ protocol.VNodeService = (*Server)(nil)

// checkTarget rejects calls meant for a different identity, such as after a restart with a new ID
func (r *Server) checkTarget(ctx context.Context) error {
	if target, ok := rpc.GetTarget(ctx); ok && target != r.LocalNode.ID() {
		return rpc.WrapError(chord.ErrStaleHandle)
	}
	return nil
}

func (r *Server) Identity(ctx context.Context, _ *protocol.IdentityRequest) (*protocol.IdentityResponse, error) {
	if err := r.checkTarget(ctx); err != nil {
		return nil, err
	}
	return &protocol.IdentityResponse{
		Identity: r.LocalNode.Identity(),
	}, nil
}

func (r *Server) Ping(ctx context.Context, _ *protocol.PingRequest) (*protocol.PingResponse, error) {
	if err := r.checkTarget(ctx); err != nil {
		return nil, err
	}
	if err := r.LocalNode.Ping(ctx); err != nil {
		return nil, rpc.WrapError(err)
	}
	return &protocol.PingResponse{}, nil
}

func (r *Server) Notify(ctx context.Context, req *protocol.NotifyRequest) (*protocol.NotifyResponse, error) {
	if err := r.checkTarget(ctx); err != nil {
		return nil, err
	}
	predecessor := req.GetPredecessor()
	if predecessor == nil {
		return nil, rpc.WrapError(chord.ErrNodeNil)
	}

	vnode, err := r.Factory(predecessor)
	if err != nil {
		return nil, rpc.WrapError(err)
	}
	if err := r.LocalNode.Notify(ctx, vnode); err != nil {
		return nil, rpc.WrapError(err)
	}

	return &protocol.NotifyResponse{}, nil
}

func (r *Server) FindSuccessor(ctx context.Context, req *protocol.FindSuccessorRequest) (*protocol.FindSuccessorResponse, error) {
	if err := r.checkTarget(ctx); err != nil {
		return nil, err
	}
	vnode, err := r.LocalNode.FindSuccessor(ctx, req.GetKey())
	if err != nil {
		return nil, rpc.WrapError(err)
	}
	return &protocol.FindSuccessorResponse{
		Successor: vnode.Identity(),
	}, nil
}

func (r *Server) ClosestPrecedingFinger(ctx context.Context, req *protocol.ClosestPrecedingFingerRequest) (*protocol.ClosestPrecedingFingerResponse, error) {
	if err := r.checkTarget(ctx); err != nil {
		return nil, err
	}
	vnode, err := r.LocalNode.ClosestPrecedingFinger(ctx, req.GetKey())
	if err != nil {
		return nil, rpc.WrapError(err)
	}
	return &protocol.ClosestPrecedingFingerResponse{
		Finger: vnode.Identity(),
	}, nil
}

func (r *Server) GetSuccessors(ctx context.Context, _ *protocol.GetSuccessorsRequest) (*protocol.GetSuccessorsResponse, error) {
	if err := r.checkTarget(ctx); err != nil {
		return nil, err
	}
	vnodes, err := r.LocalNode.GetSuccessors(ctx)
	if err != nil {
		return nil, rpc.WrapError(err)
	}
	identities := make([]*protocol.Node, 0, len(vnodes))
	for _, vnode := range vnodes {
		if vnode == nil {
			continue
		}
		identities = append(identities, vnode.Identity())
	}
	return &protocol.GetSuccessorsResponse{
		Successors: identities,
	}, nil
}

func (r *Server) GetPredecessor(ctx context.Context, _ *protocol.GetPredecessorRequest) (*protocol.GetPredecessorResponse, error) {
	if err := r.checkTarget(ctx); err != nil {
		return nil, err
	}
	vnode, err := r.LocalNode.GetPredecessor(ctx)
	if err != nil {
		return nil, rpc.WrapError(err)
	}
	resp := &protocol.GetPredecessorResponse{}
	if vnode != nil {
		resp.Predecessor = vnode.Identity()
	}
	return resp, nil
}
