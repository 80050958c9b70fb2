package rpc

import (
	"context"
	"net/http"
	"strconv"

	"go.miragespace.co/chordring/spec/protocol"
)

const (
	// expected identifier of the callee, used to detect stale handles
	HeaderTargetID = "x-chord-target"
)

type rpcContextKey string

const (
	contextNodeKey   = rpcContextKey("dial-node")   // *protocol.Node to connect
	contextTargetKey = rpcContextKey("target-node") // expected identifier as sent by the caller
)

// Connect to the provided node in this request
func WithNode(ctx context.Context, node *protocol.Node) context.Context {
	return context.WithValue(ctx, contextNodeKey, node)
}

// Retrieve the node of this request
func GetNode(ctx context.Context) *protocol.Node {
	if node, ok := ctx.Value(contextNodeKey).(*protocol.Node); ok {
		return node
	}
	return nil
}

// Serialize the expected identifier of the destination as http headers
func SerializeTargetHeader(ctx context.Context, h http.Header) {
	node := GetNode(ctx)
	if node == nil || node.GetUnknown() {
		return
	}
	h.Set(HeaderTargetID, strconv.FormatUint(node.GetId(), 10))
}

// Retrieve the identifier the caller expects this node to have
func GetTarget(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(contextTargetKey).(uint64)
	return id, ok
}

// Middleware to attach the expected identifier to the current request. The identifier can be retrieved with GetTarget()
func ExtractTarget(base http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoded := r.Header.Get(HeaderTargetID)
		if encoded != "" {
			if id, err := strconv.ParseUint(encoded, 10, 64); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), contextTargetKey, id))
			}
		}
		base.ServeHTTP(w, r)
	})
}
