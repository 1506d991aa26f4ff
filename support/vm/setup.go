package vm

import (
	"context"
	"fmt"
	"testing"

	ipldcbor "github.com/ipfs/go-ipld-cbor"
	"github.com/stretchr/testify/require"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/builtin/account"
	"github.com/jetton-project/jetton-actors/actors/builtin/exported"
	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/support/ipld"
)

// One native coin in its smallest unit.
var TON = abi.NewTokenAmount(1e9)

//
// Genesis like setup
//

// NewVMWithBuiltins creates a VM running every builtin actor over an
// in-memory block store.
func NewVMWithBuiltins(ctx context.Context) *VM {
	return NewVMWithBlockStore(ctx, ipld.NewBlockStoreInMemory())
}

// NewVMWithBlockStore creates a VM running every builtin actor over bs.
func NewVMWithBlockStore(ctx context.Context, bs ipldcbor.IpldBlockstore) *VM {
	lookup := ActorImplLookup{}
	for _, ba := range exported.BuiltinActors() {
		lookup[ba.Code()] = ba
	}
	return NewVM(ctx, lookup, bs)
}

// CreateAccount deploys an account actor whose address is derived from label.
func CreateAccount(t testing.TB, v *VM, label string, balance abi.TokenAmount) abi.Address {
	data, err := cell.Marshal(&account.State{Label: label})
	require.NoError(t, err)
	addr, err := v.Deploy(builtin.AccountCode, data, balance)
	require.NoError(t, err)
	return addr
}

// Creates n account actors in the VM with the given balance.
func CreateAccounts(t testing.TB, v *VM, n int, balance abi.TokenAmount) []abi.Address {
	existing := 0
	require.NoError(t, v.ForEachActor(func(_ abi.Address, act *Actor) error {
		if act.Code.Equals(builtin.AccountActorCodeID) {
			existing++
		}
		return nil
	}))

	addrs := make([]abi.Address, n)
	for i := range addrs {
		addrs[i] = CreateAccount(t, v, fmt.Sprintf("account-%d", existing+i), balance)
	}
	return addrs
}
