package rpc

import (
	"fmt"

	"go.miragespace.co/chordring/spec/chord"

	"github.com/twitchtv/twirp"
)

// GetErrorMeta returns the Go type of the error behind err and, when a
// sentinel was wrapped, its full message
func GetErrorMeta(err twirp.Error) (cause, detail string) {
	return err.Meta("cause"), err.Meta("detail")
}

func WrapError(err error) error {
	if err == nil {
		return nil
	}
	var code twirp.ErrorCode
	if chord.ErrorIsRetryable(err) {
		code = twirp.FailedPrecondition
	} else {
		code = twirp.Internal
	}
	msg := err.Error()
	if sentinel := chord.ErrorSentinel(err); sentinel != nil {
		msg = sentinel.Error()
	}
	twerr := twirp.NewError(code, msg)
	twerr = twerr.WithMeta("cause", fmt.Sprintf("%T", err)) // to easily tell apart wrapped internal errors from explicit ones
	if msg != err.Error() {
		twerr = twerr.WithMeta("detail", err.Error())
	}
	return twirp.WrapError(twerr, err)
}
