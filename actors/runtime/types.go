package runtime

import (
	"github.com/ipfs/go-cid"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

// Concrete types associated with the runtime interface.

// OutboundMessage is an internal message queued by an actor.
type OutboundMessage struct {
	To    abi.Address
	Value abi.TokenAmount
	// Bounce asks the receiver to return the value if delivery fails.
	Bounce bool
	// Init deploys the receiver when it does not exist yet.
	Init *abi.StateInit
	Body *cell.Cell
}

// VMActor is the contract between actor code and the VM that hosts it.
type VMActor interface {
	abi.Invokee
	// Code is the identity of the actor's code image.
	Code() cid.Cid
	// State returns a fresh, empty state object of the actor's storage type.
	State() cell.MarshalUnmarshaler
}
