package protocol

import "context"

const (
	VNodeServicePathPrefix = "/rpc/chord.VNodeService/"
)

// VNodeService is the ring RPC contract exposed by every node
type VNodeService interface {
	Identity(context.Context, *IdentityRequest) (*IdentityResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Notify(context.Context, *NotifyRequest) (*NotifyResponse, error)
	FindSuccessor(context.Context, *FindSuccessorRequest) (*FindSuccessorResponse, error)
	ClosestPrecedingFinger(context.Context, *ClosestPrecedingFingerRequest) (*ClosestPrecedingFingerResponse, error)
	GetSuccessors(context.Context, *GetSuccessorsRequest) (*GetSuccessorsResponse, error)
	GetPredecessor(context.Context, *GetPredecessorRequest) (*GetPredecessorResponse, error)
}
