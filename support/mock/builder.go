package mock

import (
	"context"
	"testing"

	cid "github.com/ipfs/go-cid"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

// Build for fluent initialization of a mock runtime.
type RuntimeBuilder struct {
	rt *Runtime
}

// Initializes a new builder with a receiving actor address.
func NewBuilder(ctx context.Context, receiver abi.Address) *RuntimeBuilder {
	m := &Runtime{
		ctx:      ctx,
		lt:       0,
		receiver: receiver,
		caller:   abi.Undef,

		state: cid.Undef,
		store: make(map[cid.Cid]*cell.Cell),

		balance:       abi.NewTokenAmount(0),
		valueReceived: abi.NewTokenAmount(0),

		t:                        nil, // Initialized at Build()
		expectValidateCallerAny:  false,
		expectValidateCallerAddr: nil,

		expectSends: make([]*expectedMessage, 0),
	}
	return &RuntimeBuilder{m}
}

// Builds a new runtime object with the configured values.
func (b *RuntimeBuilder) Build(t testing.TB) *Runtime {
	cpy := *b.rt

	// Deep copy the mutable values.
	cpy.store = make(map[cid.Cid]*cell.Cell)
	for k, v := range b.rt.store {
		cpy.store[k] = v
	}

	cpy.t = t
	return &cpy
}

func (b *RuntimeBuilder) WithLogicalTime(lt uint64) *RuntimeBuilder {
	b.rt.lt = lt
	return b
}

func (b *RuntimeBuilder) WithCaller(address abi.Address) *RuntimeBuilder {
	b.rt.caller = address
	return b
}

func (b *RuntimeBuilder) WithBalance(balance, received abi.TokenAmount) *RuntimeBuilder {
	b.rt.balance = balance
	b.rt.valueReceived = received
	return b
}

// WithState deploys the actor with an existing storage image.
func (b *RuntimeBuilder) WithState(st cell.Marshaler) *RuntimeBuilder {
	root, err := cell.Marshal(st)
	if err != nil {
		panic(err)
	}
	key, _, err := abi.CellCid(root)
	if err != nil {
		panic(err)
	}
	b.rt.store[key] = root
	b.rt.state = key
	return b
}
