package chord

import (
	"context"
	"errors"

	"github.com/twitchtv/twirp"
)

var (
	ErrRPCTimeout       = errorDef("chord/rpc: peer unreachable within deadline", true)
	ErrJoinInvalidState = errorDef("chord/membership: node cannot join at the moment", true)

	ErrAllRoutesExhausted  = errorDef("chord/lookup: all routes exhausted", false)
	ErrLookupFailed        = errorDef("chord/lookup: lookup exceeded hop limit without progress", false)
	ErrStaleHandle         = errorDef("chord/rpc: remote identifier does not match handle", false)
	ErrIdentifierCollision = errorDef("chord/membership: identifier is already taken by another node", false)
	ErrOutOfSpace          = errorDef("chord: identifier is outside of the identifier space", false)

	ErrNodeGone        = errorDef("chord: node is not part of the chord ring", false)
	ErrNodeNotStarted  = errorDef("chord: node is not running", false)
	ErrNodeNoSuccessor = errorDef("chord: node has no successor, possibly invalid chord ring", false)
	ErrNodeNil         = errorDef("chord: node cannot be nil", false)
)

func ErrorIsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if retryable, ok := retryableMap[err]; ok {
		return retryable
	}
	for e, retryable := range retryableMap {
		if retryable && errors.Is(err, e) {
			return true
		}
	}
	return false
}

// ErrorSentinel returns the registered error that err wraps, if any
func ErrorSentinel(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := retryableMap[err]; ok {
		return err
	}
	for e := range retryableMap {
		if errors.Is(err, e) {
			return e
		}
	}
	return nil
}

// this is needed because RPC call squash type information, so in call site with signature
// if err == ErrABC will fail (but err.Error() == ErrABC.Error() will work).
func ErrorMapper(err error) error {
	if err == nil {
		return err
	}

	var (
		srcErr    = err.Error()
		parsedErr = err
	)

	var twirpErr twirp.Error
	if errors.As(err, &twirpErr) {
		srcErr = twirpErr.Msg()
	}

	if mapped, ok := errorStrMap[srcErr]; ok {
		parsedErr = mapped
	}

	return parsedErr
}

var retryableMap = map[error]bool{
	context.DeadlineExceeded: true,
}

var errorStrMap = map[string]error{}

func errorDef(str string, retryable bool) error {
	err := errors.New(str)
	retryableMap[err] = retryable
	errorStrMap[str] = err
	return err
}
