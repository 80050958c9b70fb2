//go:build !no_mocks
// +build !no_mocks

package mocks

import (
	"context"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"

	"github.com/stretchr/testify/mock"
)

type VNode struct {
	mock.Mock
}

var _ chord.VNode = (*VNode)(nil)

func (n *VNode) ID() uint64 {
	args := n.Called()
	return args.Get(0).(uint64)
}

func (n *VNode) Identity() *protocol.Node {
	args := n.Called()
	v := args.Get(0)
	if v == nil {
		return nil
	}
	return v.(*protocol.Node)
}

func (n *VNode) Ping(ctx context.Context) error {
	args := n.Called(ctx)
	return args.Error(0)
}

func (n *VNode) Notify(ctx context.Context, predecessor chord.VNode) error {
	args := n.Called(ctx, predecessor)
	return args.Error(0)
}

func (n *VNode) FindSuccessor(ctx context.Context, key uint64) (chord.VNode, error) {
	args := n.Called(ctx, key)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.(chord.VNode), e
}

func (n *VNode) ClosestPrecedingFinger(ctx context.Context, key uint64) (chord.VNode, error) {
	args := n.Called(ctx, key)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.(chord.VNode), e
}

func (n *VNode) GetSuccessors(ctx context.Context) ([]chord.VNode, error) {
	args := n.Called(ctx)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.([]chord.VNode), e
}

func (n *VNode) GetPredecessor(ctx context.Context) (chord.VNode, error) {
	args := n.Called(ctx)
	v := args.Get(0)
	e := args.Error(1)
	if v == nil {
		return nil, e
	}
	return v.(chord.VNode), e
}
