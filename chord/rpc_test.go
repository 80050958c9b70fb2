package chord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	rttImpl "go.miragespace.co/chordring/rtt"
	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/spec/rpc"
	"go.miragespace.co/chordring/spec/rtt"

	"github.com/stretchr/testify/require"
)

type httpNode struct {
	*LocalNode
	server *httptest.Server
}

func newTestClient(t *testing.T) rpc.ChordClient {
	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	return rpc.DynamicChordClient(&http.Client{
		Transport: transport,
	})
}

func startHTTPNode(t *testing.T, client rpc.ChordClient, id uint64) *httpNode {
	srv := httptest.NewUnstartedServer(nil)

	conf := devConfig(t, chord.DefaultSpace, id)
	conf.Identity.Address = srv.Listener.Addr().String()
	conf.ChordClient = client
	conf.NodesRTT = rttImpl.NewTracker(20)
	node := NewLocalNode(conf)

	srv.Config.Handler = rpc.NewChordServer(node.Logger, &Server{
		LocalNode: node,
		Factory:   node.Resolve,
	})
	srv.Start()

	return &httpNode{
		LocalNode: node,
		server:    srv,
	}
}

func makeHTTPRing(t *testing.T, as *require.Assertions, num int) ([]*httpNode, func()) {
	client := newTestClient(t)
	ctx := context.Background()

	ids := uniqueIDs(chord.DefaultSpace, num)
	nodes := make([]*httpNode, num)
	locals := make([]*LocalNode, num)
	for i, id := range ids {
		nodes[i] = startHTTPNode(t, client, id)
		locals[i] = nodes[i].LocalNode
	}

	as.NoError(nodes[0].Create())
	for i := 1; i < num; i++ {
		seed, err := nodes[i].Discover(ctx, nodes[0].Identity().GetAddress())
		as.NoError(err)
		as.Equal(nodes[0].ID(), seed.ID())
		as.NoError(nodes[i].Join(ctx, seed))
		stabilizeRound(locals[:i+1])
	}

	as.True(converge(locals, 3*num+10), "ring did not converge over http")
	fixFingersRound(locals)

	return nodes, func() {
		for _, node := range nodes {
			node.Leave()
		}
		for _, node := range nodes {
			node.server.Close()
		}
	}
}

func TestRPCRing(t *testing.T) {
	as := require.New(t)

	nodes, done := makeHTTPRing(t, as, 4)
	defer done()

	locals := make([]*LocalNode, len(nodes))
	for i, node := range nodes {
		locals[i] = node.LocalNode
	}

	RingCheck(as, locals, true)
	checkLookups(as, locals, uniqueIDs(chord.DefaultSpace, 10))

	// every peer handle was measured at least once while stabilizing
	for _, node := range locals {
		succ := node.getSuccessor()
		as.IsType(&RemoteNode{}, succ)
		stats := node.NodesRTT.Window(rtt.PeerKey(succ.Identity()), time.Minute)
		as.NotNil(stats)
		as.Greater(stats.Max, time.Duration(0))
	}
}

func TestRPCStaleHandle(t *testing.T) {
	as := require.New(t)

	nodes, done := makeHTTPRing(t, as, 2)
	defer done()

	target := nodes[1]
	ctx := context.Background()

	stale, err := NewRemoteNode(ctx, target.Logger, target.ChordClient, &protocol.Node{
		Id:      chord.DefaultSpace.Sum(target.ID(), 1),
		Address: target.Identity().GetAddress(),
	})
	as.NoError(err)

	as.ErrorIs(stale.Ping(ctx), chord.ErrStaleHandle)
	_, err = stale.GetSuccessors(ctx)
	as.ErrorIs(err, chord.ErrStaleHandle)

	fresh, err := nodes[0].Discover(ctx, target.Identity().GetAddress())
	as.NoError(err)
	as.Equal(target.ID(), fresh.ID())
	as.NoError(fresh.Ping(ctx))
}

func TestRPCNodeGone(t *testing.T) {
	as := require.New(t)

	nodes, done := makeHTTPRing(t, as, 3)
	defer done()

	ctx := context.Background()
	leaving := nodes[2]

	handle, err := nodes[0].Resolve(leaving.Identity())
	as.NoError(err)
	as.NoError(handle.Ping(ctx))

	leaving.Leave()

	as.ErrorIs(handle.Ping(ctx), chord.ErrNodeGone)
	_, err = handle.FindSuccessor(ctx, 1)
	as.ErrorIs(err, chord.ErrNodeGone)
	as.False(chord.ErrorIsRetryable(err))

	// process is gone entirely
	leaving.server.Close()
	err = handle.Ping(ctx)
	as.ErrorIs(err, chord.ErrRPCTimeout)
	as.True(chord.ErrorIsRetryable(err))

	remaining := []*LocalNode{nodes[0].LocalNode, nodes[1].LocalNode}
	as.True(converge(remaining, 10))
	RingCheck(as, remaining, true)
}

func TestRPCDiscoverUnreachable(t *testing.T) {
	as := require.New(t)

	client := newTestClient(t)
	node := startHTTPNode(t, client, 1)
	defer node.server.Close()

	dead := httptest.NewServer(http.NotFoundHandler())
	addr := dead.Listener.Addr().String()
	dead.Close()

	_, err := node.Discover(context.Background(), addr)
	as.ErrorIs(err, chord.ErrRPCTimeout)
	as.Equal(chord.Inactive, node.State())
}

func TestRPCOutOfSpace(t *testing.T) {
	as := require.New(t)

	nodes, done := makeHTTPRing(t, as, 2)
	defer done()

	remote := nodes[0].getSuccessor()
	as.IsType(&RemoteNode{}, remote)

	_, err := remote.FindSuccessor(context.Background(), chord.DefaultSpace.Max()+1)
	as.ErrorIs(err, chord.ErrOutOfSpace)
}
