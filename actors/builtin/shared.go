package builtin

import (
	"github.com/filecoin-project/go-state-types/exitcode"

	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/actors/runtime"
)

///// Code shared by multiple built-in actors. /////

// Aborts with an ErrIllegalArgument if predicate is not true.
func RequireParam(rt runtime.Runtime, predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.Abortf(exitcode.ErrIllegalArgument, msg, args...)
	}
}

// Aborts with an ErrIllegalState if predicate is not true.
func RequireState(rt runtime.Runtime, predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.Abortf(exitcode.ErrIllegalState, msg, args...)
	}
}

// In the event that an error is non-nil, abort with the exit code carried by the
// error if any, otherwise defaultExitCode.
func RequireNoErr(rt runtime.Runtime, err error, defaultExitCode exitcode.ExitCode, msg string, args ...interface{}) {
	if err != nil {
		newMsg := msg + ": %s"
		newArgs := append(args, err)
		code := exitcode.Unwrap(err, defaultExitCode)
		rt.Abortf(code, newMsg, newArgs...)
	}
}

// MustMarshal encodes a message body, aborting with ErrSerialization on failure.
func MustMarshal(rt runtime.Runtime, m cell.Marshaler, what string) *cell.Cell {
	c, err := cell.Marshal(m)
	RequireNoErr(rt, err, exitcode.ErrSerialization, "failed to marshal %s", what)
	return c
}
