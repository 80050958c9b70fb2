package chord

import (
	"context"
	"time"

	"go.miragespace.co/chordring/metrics"

	"github.com/avast/retry-go/v4"
)

type retryableWrapper struct {
	VNode
	retryInterval time.Duration
	retryAttempts uint
}

// WrapRetry wraps a given VNode to provide automatic retry on retryable lookup errors
func WrapRetry(vnode VNode, interval time.Duration, maxAttempts uint) VNode {
	return &retryableWrapper{
		VNode:         vnode,
		retryInterval: interval,
		retryAttempts: maxAttempts,
	}
}

func (n *retryableWrapper) retryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(n.retryAttempts),
		retry.Delay(n.retryInterval),
		retry.OnRetry(func(n uint, err error) {
			metrics.LookupRetries.Inc()
		}),
		retry.RetryIf(ErrorIsRetryable),
		retry.LastErrorOnly(true),
	}
}

func (n *retryableWrapper) FindSuccessor(ctx context.Context, key uint64) (VNode, error) {
	return retry.DoWithData(func() (VNode, error) {
		return n.VNode.FindSuccessor(ctx, key)
	}, n.retryOptions(ctx)...)
}

func (n *retryableWrapper) ClosestPrecedingFinger(ctx context.Context, key uint64) (VNode, error) {
	return retry.DoWithData(func() (VNode, error) {
		return n.VNode.ClosestPrecedingFinger(ctx, key)
	}, n.retryOptions(ctx)...)
}

func (n *retryableWrapper) GetSuccessors(ctx context.Context) ([]VNode, error) {
	return retry.DoWithData(func() ([]VNode, error) {
		return n.VNode.GetSuccessors(ctx)
	}, n.retryOptions(ctx)...)
}

func (n *retryableWrapper) GetPredecessor(ctx context.Context) (VNode, error) {
	return retry.DoWithData(func() (VNode, error) {
		return n.VNode.GetPredecessor(ctx)
	}, n.retryOptions(ctx)...)
}
