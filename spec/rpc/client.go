package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.miragespace.co/chordring/metrics"
	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"

	"github.com/twitchtv/twirp"
)

type dynamicClient struct {
	client *http.Client
}

var _ ChordClient = (*dynamicClient)(nil)

// DynamicChordClient returns a ChordClient that sends every call to the node
// attached to the call context with WithNode
func DynamicChordClient(client *http.Client) ChordClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &dynamicClient{
		client: client,
	}
}

type errorEnvelope struct {
	Code string            `json:"code"`
	Msg  string            `json:"msg"`
	Meta map[string]string `json:"meta"`
}

func decodeError(body io.Reader, status int) error {
	var env errorEnvelope
	if err := json.NewDecoder(body).Decode(&env); err != nil || !twirp.IsValidErrorCode(twirp.ErrorCode(env.Code)) {
		return twirp.NewError(twirp.Internal, fmt.Sprintf("unexpected response status %d", status))
	}
	twerr := twirp.NewError(twirp.ErrorCode(env.Code), env.Msg)
	for k, v := range env.Meta {
		twerr = twerr.WithMeta(k, v)
	}
	return twerr
}

func invoke[Req any, Resp any](ctx context.Context, c *dynamicClient, method string, req *Req) (resp *Resp, err error) {
	node := GetNode(ctx)
	if node == nil {
		return nil, chord.ErrNodeNil
	}

	ctx = metrics.BeginRPC(ctx, metrics.SideClient, method)
	defer func() {
		metrics.FinishRPC(ctx, err)
	}()

	buf, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}

	url := "http://" + node.GetAddress() + protocol.VNodeServicePathPrefix + method
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	r.Header.Set("Content-Type", "application/json")
	SerializeTargetHeader(ctx, r.Header)

	res, err := c.client.Do(r)
	if err != nil {
		return nil, fmt.Errorf("calling %s on %s (%v): %w", method, node.GetAddress(), err, chord.ErrRPCTimeout)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, chord.ErrorMapper(decodeError(res.Body, res.StatusCode))
	}

	resp = new(Resp)
	if err := json.NewDecoder(res.Body).Decode(resp); err != nil {
		return nil, fmt.Errorf("reading %s response from %s (%v): %w", method, node.GetAddress(), err, chord.ErrRPCTimeout)
	}
	return resp, nil
}

func (c *dynamicClient) Identity(ctx context.Context, req *protocol.IdentityRequest) (*protocol.IdentityResponse, error) {
	return invoke[protocol.IdentityRequest, protocol.IdentityResponse](ctx, c, "Identity", req)
}

func (c *dynamicClient) Ping(ctx context.Context, req *protocol.PingRequest) (*protocol.PingResponse, error) {
	return invoke[protocol.PingRequest, protocol.PingResponse](ctx, c, "Ping", req)
}

func (c *dynamicClient) Notify(ctx context.Context, req *protocol.NotifyRequest) (*protocol.NotifyResponse, error) {
	return invoke[protocol.NotifyRequest, protocol.NotifyResponse](ctx, c, "Notify", req)
}

func (c *dynamicClient) FindSuccessor(ctx context.Context, req *protocol.FindSuccessorRequest) (*protocol.FindSuccessorResponse, error) {
	return invoke[protocol.FindSuccessorRequest, protocol.FindSuccessorResponse](ctx, c, "FindSuccessor", req)
}

func (c *dynamicClient) ClosestPrecedingFinger(ctx context.Context, req *protocol.ClosestPrecedingFingerRequest) (*protocol.ClosestPrecedingFingerResponse, error) {
	return invoke[protocol.ClosestPrecedingFingerRequest, protocol.ClosestPrecedingFingerResponse](ctx, c, "ClosestPrecedingFinger", req)
}

func (c *dynamicClient) GetSuccessors(ctx context.Context, req *protocol.GetSuccessorsRequest) (*protocol.GetSuccessorsResponse, error) {
	return invoke[protocol.GetSuccessorsRequest, protocol.GetSuccessorsResponse](ctx, c, "GetSuccessors", req)
}

func (c *dynamicClient) GetPredecessor(ctx context.Context, req *protocol.GetPredecessorRequest) (*protocol.GetPredecessorResponse, error) {
	return invoke[protocol.GetPredecessorRequest, protocol.GetPredecessorResponse](ctx, c, "GetPredecessor", req)
}
