package abi

import (
	"fmt"

	"github.com/filecoin-project/go-state-types/big"

	"github.com/jetton-project/jetton-actors/actors/cell"
)

// The abi package contains definitions of all types that cross the VM boundary and are used
// within actor code.

// Op is the 32-bit operation code that leads every internal message body.
// Actors export a handler per op in place of a method number table.
type Op uint32

func (o Op) String() string {
	return fmt.Sprintf("0x%08x", uint32(o))
}

// OpBounced prefixes the body of a message returned to its sender after a
// failed delivery.
const OpBounced Op = 0xffffffff

// QueryID correlates a request with the notifications and excesses it causes.
type QueryID = uint64

// TokenAmount is an amount of native coin or of jettons, denominated in the
// smallest indivisible unit.
//
// BigInt types are aliases rather than new types because the latter introduce incredible amounts of noise converting to
// and from types in order to manipulate values. We give up some type safety for ergonomics.
type TokenAmount = big.Int

func NewTokenAmount(t int64) TokenAmount {
	return big.NewInt(t)
}

// Invokee is a type that makes methods invokable, keyed by the op that
// selects them.
type Invokee interface {
	Exports() map[Op]interface{}
}

// EmptyValue is the return type of every message handler: internal messages
// carry no reply, results leave through further sends.
type EmptyValue struct{}

var _ cell.MarshalUnmarshaler = (*EmptyValue)(nil)

func (v *EmptyValue) MarshalCell(*cell.Builder) error {
	return nil
}

func (v *EmptyValue) UnmarshalCell(*cell.Slice) error {
	return nil
}

// Empty is a convenience alias for an empty value.
var Empty = &EmptyValue{}
