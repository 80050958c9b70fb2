package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.miragespace.co/chordring/metrics"
	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/util"

	"github.com/go-chi/chi/v5"
	"github.com/twitchtv/twirp"
	"go.uber.org/zap"
)

const (
	// largest request body accepted by the ring endpoints
	MaxRequestSize = 1 << 16
)

// NewChordServer exposes svc as JSON over HTTP, one POST route per method
// under protocol.VNodeServicePathPrefix
func NewChordServer(logger *zap.Logger, svc protocol.VNodeService) http.Handler {
	r := chi.NewRouter()
	r.Use(ExtractTarget)
	r.Use(util.LimitBody(MaxRequestSize))
	r.Route(strings.TrimSuffix(protocol.VNodeServicePathPrefix, "/"), func(r chi.Router) {
		r.Post("/Identity", handle(logger, "Identity", svc.Identity))
		r.Post("/Ping", handle(logger, "Ping", svc.Ping))
		r.Post("/Notify", handle(logger, "Notify", svc.Notify))
		r.Post("/FindSuccessor", handle(logger, "FindSuccessor", svc.FindSuccessor))
		r.Post("/ClosestPrecedingFinger", handle(logger, "ClosestPrecedingFinger", svc.ClosestPrecedingFinger))
		r.Post("/GetSuccessors", handle(logger, "GetSuccessors", svc.GetSuccessors))
		r.Post("/GetPredecessor", handle(logger, "GetPredecessor", svc.GetPredecessor))
	})
	return r
}

func handle[Req any, Resp any](logger *zap.Logger, method string, fn func(context.Context, *Req) (*Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := metrics.BeginRPC(r.Context(), metrics.SideServer, method)

		req := new(Req)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			metrics.FinishRPC(ctx, err)
			twirp.WriteError(w, twirp.NewError(twirp.Malformed, "failed to decode request body: "+err.Error()))
			return
		}

		resp, err := fn(ctx, req)
		metrics.FinishRPC(ctx, err)
		if err != nil {
			var twerr twirp.Error
			if errors.As(err, &twerr) {
				cause, detail := GetErrorMeta(twerr)
				logger.Debug("RPC returned an error",
					zap.String("method", method),
					zap.String("code", string(twerr.Code())),
					zap.String("msg", twerr.Msg()),
					zap.String("cause", cause),
					zap.String("detail", detail),
				)
			}
			twirp.WriteError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Warn("Failed to write RPC response", zap.String("method", method), zap.Error(err))
		}
	}
}
