package test

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/require"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin/messages"
	"github.com/jetton-project/jetton-actors/support/genesis"
	"github.com/jetton-project/jetton-actors/support/vm"
)

type jettonEnv struct {
	v      *vm.VM
	admin  abi.Address
	alice  abi.Address
	bob    abi.Address
	jetton *genesis.Jetton
}

// newJettonEnv deploys three accounts and a jetton administered by the first,
// with supply credited to the admin's wallet.
func newJettonEnv(t *testing.T, supply string, closeAfterMint bool) *jettonEnv {
	v := vm.NewVMWithBuiltins(context.Background())
	addrs := vm.CreateAccounts(t, v, 3, big.Mul(big.NewInt(100), vm.TON))

	cfg := genesis.NewDefaultConfig()
	cfg.Minter.Admin = addrs[0]
	cfg.Minter.TotalSupply = supply
	cfg.Minter.CloseAfterMint = closeAfterMint
	cfg.Content.Name = "Scenario Jetton"
	cfg.Content.Symbol = "SCN"
	jetton, err := genesis.Setup(v, cfg)
	require.NoError(t, err)

	return &jettonEnv{v: v, admin: addrs[0], alice: addrs[1], bob: addrs[2], jetton: jetton}
}

func (e *jettonEnv) walletOf(t *testing.T, owner abi.Address) abi.Address {
	addr, err := e.v.WalletAddress(e.jetton.Minter, owner)
	require.NoError(t, err)
	return addr
}

// jettonBalance is zero for owners whose wallet was never deployed.
func (e *jettonEnv) jettonBalance(t *testing.T, owner abi.Address) abi.TokenAmount {
	addr := e.walletOf(t, owner)
	act, found, err := e.v.GetActor(addr)
	require.NoError(t, err)
	if !found || !act.Initialized() {
		return big.Zero()
	}
	wd, err := e.v.WalletData(addr)
	require.NoError(t, err)
	return wd.Balance
}

func (e *jettonEnv) totalSupply(t *testing.T) abi.TokenAmount {
	jd, err := e.v.JettonData(e.jetton.Minter)
	require.NoError(t, err)
	return jd.TotalSupply
}

func mintMsg(to, response abi.Address, amount int64) *messages.Mint {
	return &messages.Mint{
		QueryID:   uint64(amount),
		To:        to,
		TonAmount: big.Div(vm.TON, big.NewInt(10)),
		MasterMsg: messages.InternalTransfer{
			QueryID:          uint64(amount),
			Amount:           abi.NewTokenAmount(amount),
			ResponseAddress:  response,
			ForwardTonAmount: big.Zero(),
		},
	}
}

func transferMsg(to, response abi.Address, amount int64, forward abi.TokenAmount) *messages.Transfer {
	return &messages.Transfer{
		QueryID:             uint64(amount),
		Amount:              abi.NewTokenAmount(amount),
		Destination:         to,
		ResponseDestination: response,
		ForwardTonAmount:    forward,
	}
}
