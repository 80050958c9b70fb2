//go:build !no_mocks
// +build !no_mocks

package mocks

import (
	"context"

	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/spec/rpc"

	"github.com/stretchr/testify/mock"
)

type ChordClient struct {
	mock.Mock
}

var _ rpc.ChordClient = (*ChordClient)(nil)

func (c *ChordClient) Identity(ctx context.Context, req *protocol.IdentityRequest) (*protocol.IdentityResponse, error) {
	args := c.Called(ctx, req)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.(*protocol.IdentityResponse), e
}

func (c *ChordClient) Ping(ctx context.Context, req *protocol.PingRequest) (*protocol.PingResponse, error) {
	args := c.Called(ctx, req)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.(*protocol.PingResponse), e
}

func (c *ChordClient) Notify(ctx context.Context, req *protocol.NotifyRequest) (*protocol.NotifyResponse, error) {
	args := c.Called(ctx, req)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.(*protocol.NotifyResponse), e
}

func (c *ChordClient) FindSuccessor(ctx context.Context, req *protocol.FindSuccessorRequest) (*protocol.FindSuccessorResponse, error) {
	args := c.Called(ctx, req)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.(*protocol.FindSuccessorResponse), e
}

func (c *ChordClient) ClosestPrecedingFinger(ctx context.Context, req *protocol.ClosestPrecedingFingerRequest) (*protocol.ClosestPrecedingFingerResponse, error) {
	args := c.Called(ctx, req)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.(*protocol.ClosestPrecedingFingerResponse), e
}

func (c *ChordClient) GetSuccessors(ctx context.Context, req *protocol.GetSuccessorsRequest) (*protocol.GetSuccessorsResponse, error) {
	args := c.Called(ctx, req)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.(*protocol.GetSuccessorsResponse), e
}

func (c *ChordClient) GetPredecessor(ctx context.Context, req *protocol.GetPredecessorRequest) (*protocol.GetPredecessorResponse, error) {
	args := c.Called(ctx, req)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.(*protocol.GetPredecessorResponse), e
}
