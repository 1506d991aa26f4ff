package vm

import (
	"github.com/filecoin-project/go-state-types/big"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/builtin/account"
	"github.com/jetton-project/jetton-actors/actors/builtin/minter"
	"github.com/jetton-project/jetton-actors/actors/builtin/wallet"
)

// CheckStateInvariants checks the storage of every actor, and that each
// minter's total supply equals the sum of its wallets' balances. Supply and
// balances only agree once delivery has settled.
func CheckStateInvariants(vm *VM) (*builtin.MessageAccumulator, error) {
	acc := &builtin.MessageAccumulator{}
	supplies := make(map[abi.Address]abi.TokenAmount)
	held := make(map[abi.Address]abi.TokenAmount)

	err := vm.ForEachActor(func(addr abi.Address, act *Actor) error {
		acc.Require(act.Balance.GreaterThanEqual(big.Zero()), "%v has negative balance %v", addr, act.Balance)
		switch {
		case !act.Initialized():
			return nil
		case act.Code.Equals(builtin.MinterActorCodeID):
			var st minter.State
			if err := vm.GetState(addr, &st); err != nil {
				return err
			}
			summary, msgs := minter.CheckStateInvariants(&st)
			acc.WithPrefix("minter %v: ", addr).AddAll(msgs)
			supplies[addr] = summary.TotalSupply
		case act.Code.Equals(builtin.WalletActorCodeID):
			var st wallet.State
			if err := vm.GetState(addr, &st); err != nil {
				return err
			}
			summary, msgs := wallet.CheckStateInvariants(&st, addr)
			acc.WithPrefix("wallet %v: ", addr).AddAll(msgs)
			total, ok := held[summary.Minter]
			if !ok {
				total = big.Zero()
			}
			held[summary.Minter] = big.Add(total, summary.Balance)
		case act.Code.Equals(builtin.AccountActorCodeID):
			var st account.State
			if err := vm.GetState(addr, &st); err != nil {
				return err
			}
			_, msgs := account.CheckStateInvariants(&st)
			acc.WithPrefix("account %v: ", addr).AddAll(msgs)
		default:
			acc.Addf("%v has unexpected code %v", addr, act.Code)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for m, supply := range supplies {
		total, ok := held[m]
		if !ok {
			total = big.Zero()
		}
		acc.Require(supply.Equals(total), "minter %v supply %v differs from wallet balances %v", m, supply, total)
	}
	for m := range held {
		_, ok := supplies[m]
		acc.Require(ok, "wallets hold jettons of %v, which is not a minter", m)
	}
	return acc, nil
}
