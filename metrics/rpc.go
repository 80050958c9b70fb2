package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsContextKey string

const (
	contextRPCCall = metricsContextKey("rpc-call")
)

type Side string

const (
	SideClient Side = "client"
	SideServer Side = "server"
)

var rpcDurations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: Namespace,
	Subsystem: "rpc",
	Name:      "duration_seconds",
	Help:      "Latency of ring RPCs by method and outcome",
	Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
}, []string{"side", "method", "outcome"})

type rpcCall struct {
	start  time.Time
	side   Side
	method string
}

func BeginRPC(ctx context.Context, side Side, method string) context.Context {
	return context.WithValue(ctx, contextRPCCall, rpcCall{
		start:  time.Now(),
		side:   side,
		method: method,
	})
}

func FinishRPC(ctx context.Context, err error) {
	call, ok := ctx.Value(contextRPCCall).(rpcCall)
	if !ok {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	rpcDurations.WithLabelValues(string(call.side), call.method, outcome).Observe(time.Since(call.start).Seconds())
}
