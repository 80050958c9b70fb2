package chord

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twitchtv/twirp"
)

func TestErrorMapper(t *testing.T) {
	as := require.New(t)

	errors := []error{
		ErrRPCTimeout,
		ErrJoinInvalidState,

		ErrAllRoutesExhausted,
		ErrLookupFailed,
		ErrStaleHandle,
		ErrIdentifierCollision,
		ErrOutOfSpace,

		ErrNodeGone,
		ErrNodeNotStarted,
		ErrNodeNoSuccessor,
		ErrNodeNil,
	}

	call := func(_ any, err error) (any, error) {
		// type squashing
		return nil, ErrorMapper(twirp.Internal.Error(err.Error()))
	}

	for _, real := range errors {
		_, mapped := call(nil, real)
		as.ErrorIs(mapped, real)
	}
}

func TestErrorMapperPassthrough(t *testing.T) {
	as := require.New(t)

	e := fmt.Errorf("sup")
	as.Equal(e, ErrorMapper(e))
	as.Nil(ErrorMapper(nil))
}

func TestErrorIsRetryable(t *testing.T) {
	as := require.New(t)

	as.True(ErrorIsRetryable(ErrRPCTimeout))
	as.True(ErrorIsRetryable(context.DeadlineExceeded))
	as.True(ErrorIsRetryable(fmt.Errorf("calling peer: %w", ErrRPCTimeout)))

	as.False(ErrorIsRetryable(nil))
	as.False(ErrorIsRetryable(ErrNodeGone))
	as.False(ErrorIsRetryable(ErrAllRoutesExhausted))
	as.False(ErrorIsRetryable(fmt.Errorf("sup")))
}

func TestErrorSentinel(t *testing.T) {
	as := require.New(t)

	as.Nil(ErrorSentinel(nil))
	as.Nil(ErrorSentinel(errors.New("random")))
	as.Equal(ErrNodeGone, ErrorSentinel(ErrNodeGone))
	as.Equal(ErrAllRoutesExhausted, ErrorSentinel(fmt.Errorf("finding successor: %w", ErrAllRoutesExhausted)))
}
