package rpc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"

	"github.com/stretchr/testify/require"
	"github.com/twitchtv/twirp"
)

func TestTargetHeader(t *testing.T) {
	as := require.New(t)

	h := http.Header{}
	SerializeTargetHeader(context.Background(), h)
	as.Empty(h.Get(HeaderTargetID))

	ctx := WithNode(context.Background(), &protocol.Node{Address: "127.0.0.1:1234", Unknown: true})
	SerializeTargetHeader(ctx, h)
	as.Empty(h.Get(HeaderTargetID))

	ctx = WithNode(context.Background(), &protocol.Node{Id: 1234, Address: "127.0.0.1:1234"})
	SerializeTargetHeader(ctx, h)
	as.Equal("1234", h.Get(HeaderTargetID))

	var (
		found  bool
		target uint64
	)
	handler := ExtractTarget(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, found = GetTarget(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header = h
	handler.ServeHTTP(httptest.NewRecorder(), req)

	as.True(found)
	as.Equal(uint64(1234), target)
}

func TestWrapError(t *testing.T) {
	as := require.New(t)

	as.Nil(WrapError(nil))

	var twerr twirp.Error

	err := WrapError(chord.ErrRPCTimeout)
	as.ErrorAs(err, &twerr)
	as.Equal(twirp.FailedPrecondition, twerr.Code())
	as.Equal(chord.ErrRPCTimeout.Error(), twerr.Msg())
	cause, detail := GetErrorMeta(twerr)
	as.NotEmpty(cause)
	as.Empty(detail)

	err = WrapError(fmt.Errorf("key 300: %w", chord.ErrOutOfSpace))
	as.ErrorAs(err, &twerr)
	as.Equal(chord.ErrOutOfSpace.Error(), twerr.Msg())
	_, detail = GetErrorMeta(twerr)
	as.Equal("key 300: "+chord.ErrOutOfSpace.Error(), detail)

	err = WrapError(chord.ErrNodeGone)
	as.ErrorAs(err, &twerr)
	as.Equal(twirp.Internal, twerr.Code())
	as.ErrorIs(chord.ErrorMapper(err), chord.ErrNodeGone)
}
