package chord

import (
	"context"
	"testing"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"

	"github.com/stretchr/testify/require"
)

func TestServerOutOfSpace(t *testing.T) {
	as := require.New(t)

	nodes, done := makeRing(t, as, chord.Space(8), []uint64{10, 50, 200})
	defer done()

	srv := &Server{
		LocalNode: nodes[0],
		Factory:   nodes[0].Resolve,
	}
	ctx := context.Background()

	resp, err := srv.FindSuccessor(ctx, &protocol.FindSuccessorRequest{Key: 44})
	as.NoError(err)
	as.Equal(uint64(50), resp.GetSuccessor().GetId())

	_, err = srv.FindSuccessor(ctx, &protocol.FindSuccessorRequest{Key: 300})
	as.ErrorIs(chord.ErrorMapper(err), chord.ErrOutOfSpace)

	_, err = srv.ClosestPrecedingFinger(ctx, &protocol.ClosestPrecedingFingerRequest{Key: 256})
	as.ErrorIs(chord.ErrorMapper(err), chord.ErrOutOfSpace)

	_, err = srv.Notify(ctx, &protocol.NotifyRequest{
		Predecessor: &protocol.Node{Id: 300, Address: "node-300"},
	})
	as.ErrorIs(chord.ErrorMapper(err), chord.ErrOutOfSpace)
	as.Equal(uint64(200), nodes[0].getPredecessor().ID())
}

func TestLocalOutOfSpace(t *testing.T) {
	as := require.New(t)

	n := NewLocalNode(devConfig(t, chord.Space(8), 1))
	as.NoError(n.Create())
	defer n.Leave()

	ctx := context.Background()

	_, err := n.FindSuccessor(ctx, 256)
	as.ErrorIs(err, chord.ErrOutOfSpace)

	_, err = n.ClosestPrecedingFinger(ctx, 256)
	as.ErrorIs(err, chord.ErrOutOfSpace)

	as.ErrorIs(n.Notify(ctx, mockPeer(1000)), chord.ErrOutOfSpace)
	as.Equal(uint64(1), n.getPredecessor().ID())

	_, err = n.Resolve(&protocol.Node{Id: 256, Address: "node-256"})
	as.ErrorIs(err, chord.ErrOutOfSpace)
}
