package protocol

type IdentityRequest struct{}

type IdentityResponse struct {
	Identity *Node `json:"identity,omitempty"`
}

func (r *IdentityResponse) GetIdentity() *Node {
	if r == nil {
		return nil
	}
	return r.Identity
}

type PingRequest struct{}

type PingResponse struct{}

type NotifyRequest struct {
	Predecessor *Node `json:"predecessor,omitempty"`
}

func (r *NotifyRequest) GetPredecessor() *Node {
	if r == nil {
		return nil
	}
	return r.Predecessor
}

type NotifyResponse struct{}

type FindSuccessorRequest struct {
	Key uint64 `json:"key"`
}

func (r *FindSuccessorRequest) GetKey() uint64 {
	if r == nil {
		return 0
	}
	return r.Key
}

type FindSuccessorResponse struct {
	Successor *Node `json:"successor,omitempty"`
}

func (r *FindSuccessorResponse) GetSuccessor() *Node {
	if r == nil {
		return nil
	}
	return r.Successor
}

type ClosestPrecedingFingerRequest struct {
	Key uint64 `json:"key"`
}

func (r *ClosestPrecedingFingerRequest) GetKey() uint64 {
	if r == nil {
		return 0
	}
	return r.Key
}

type ClosestPrecedingFingerResponse struct {
	Finger *Node `json:"finger,omitempty"`
}

func (r *ClosestPrecedingFingerResponse) GetFinger() *Node {
	if r == nil {
		return nil
	}
	return r.Finger
}

type GetSuccessorsRequest struct{}

type GetSuccessorsResponse struct {
	Successors []*Node `json:"successors,omitempty"`
}

func (r *GetSuccessorsResponse) GetSuccessors() []*Node {
	if r == nil {
		return nil
	}
	return r.Successors
}

type GetPredecessorRequest struct{}

type GetPredecessorResponse struct {
	// nil when the node has not learnt its predecessor yet
	Predecessor *Node `json:"predecessor,omitempty"`
}

func (r *GetPredecessorResponse) GetPredecessor() *Node {
	if r == nil {
		return nil
	}
	return r.Predecessor
}
