package runtime

import (
	"context"

	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/filecoin-project/go-state-types/rt"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

// Runtime is the VM's internal runtime object.
// this is everything that is accessible to actors, beyond parameters.
type Runtime interface {
	// Information related to the current message being executed.
	Message() Message

	// Logical time of the message being processed. Strictly increasing across
	// the messages delivered to one account.
	LogicalTime() uint64

	// Validates the caller against some predicate.
	// Exported actor methods must invoke at least one caller validation before returning.
	// A failed validation aborts with the given exit code.
	ValidateImmediateCallerAcceptAny()
	ValidateImmediateCallerIs(code exitcode.ExitCode, addrs ...abi.Address)

	// The balance of the receiver, including the value attached to the current message.
	CurrentBalance() abi.TokenAmount

	// Provides a handle for the actor's state object.
	State() StateHandle

	// Queues an outbound message. Messages leave only if the current handler
	// returns without aborting, in the order they were queued. Sending more
	// value than the receiver holds aborts with SysErrInsufficientFunds.
	Send(msg OutboundMessage)

	// Halts execution upon an error from which the receiver cannot recover. State changes and queued
	// messages are discarded; a bounceable message is returned to its sender.
	// This method does not return.
	// The message and args are for diagnostic purposes and do not persist on chain. They should be suitable for
	// passing to fmt.Errorf(msg, args...).
	Abortf(errExitCode exitcode.ExitCode, msg string, args ...interface{})

	// Log writes a diagnostic line attributed to the receiver.
	Log(level rt.LogLevel, msg string, args ...interface{})

	// Provides a Go context for use by the state store.
	Context() context.Context
}

// Message contains information available to the actor about the executing message.
type Message interface {
	// The address of the immediate sender.
	Caller() abi.Address

	// The address of the actor receiving the message.
	Receiver() abi.Address

	// The value attached to the message being processed, implicitly added to CurrentBalance() before method invocation.
	ValueReceived() abi.TokenAmount

	// Whether this message is a failed delivery returned to its sender.
	Bounced() bool
}

// StateHandle provides mutable, exclusive access to actor state.
type StateHandle interface {
	// Create initializes the state object.
	// This is only valid when the state has not yet been initialized.
	Create(obj cell.Marshaler)

	// Readonly loads a readonly copy of the state into the argument.
	//
	// Any modification to the state is illegal and will result in an abort.
	Readonly(obj cell.Unmarshaler)

	// Transaction loads a mutable version of the state into the `obj` argument and protects
	// the execution from side effects (including message send).
	//
	// The second argument is a function which allows the caller to mutate the state.
	//
	// If the state is modified after this function returns, execution will abort.
	//
	// # Usage
	// ```go
	// var state SomeState
	// rt.State().Transaction(&state, func() {
	//   // make some changes
	//   st.Balance = big.Add(st.Balance, amount)
	// })
	// ```
	Transaction(obj cell.MarshalUnmarshaler, f func())
}
