package builtin

import "github.com/filecoin-project/go-state-types/exitcode"

// Exit codes raised by the jetton actors. The values follow the jetton
// reference contracts so that a failed transaction reads the same on any
// implementation.
const (
	// Sender of an admin operation is not the minter's admin.
	ErrNotAdmin = exitcode.ExitCode(73)
	// A burn notification did not come from the wallet derived for its sender.
	ErrNotFromWallet = exitcode.ExitCode(74)
	// A wallet address request carried no value to pay for the reply.
	ErrNoValueForReply = exitcode.ExitCode(75)
	// Minting has been closed.
	ErrMintingClosed = exitcode.ExitCode(101)
	// Destination lies outside the wallet's workchain.
	ErrWrongWorkchain = exitcode.ExitCode(333)
	// Sender of a wallet operation is not the wallet owner.
	ErrNotOwner = exitcode.ExitCode(705)
	// Debit would take the wallet balance below zero.
	ErrBalanceTooLow = exitcode.ExitCode(706)
	// Attached value does not cover the forward amount.
	ErrNotEnoughValue = exitcode.ExitCode(709)
	// No handler is registered for the op.
	ErrUnknownOp = exitcode.ExitCode(0xffff)
)
