package wallet

import (
	"github.com/filecoin-project/go-state-types/big"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
)

type StateSummary struct {
	Balance abi.TokenAmount
	Owner   abi.Address
	Minter  abi.Address
}

// Checks internal invariants of wallet state. self is the address the wallet
// is deployed at.
func CheckStateInvariants(st *State, self abi.Address) (*StateSummary, *builtin.MessageAccumulator) {
	acc := &builtin.MessageAccumulator{}

	acc.Require(st.Balance.GreaterThanEqual(big.Zero()), "wallet balance %v is negative", st.Balance)
	acc.Require(!st.Owner.Empty(), "wallet has no owner")
	acc.Require(!st.Minter.Empty(), "wallet has no minter")
	acc.Require(st.WalletCode != nil, "wallet has no code")

	if st.WalletCode != nil {
		derived, err := Address(st.Owner, st.Minter, st.WalletCode)
		acc.RequireNoError(err, "failed to derive wallet address")
		if err == nil {
			acc.Require(derived == self, "wallet at %v derives to %v", self, derived)
		}
	}

	return &StateSummary{
		Balance: st.Balance,
		Owner:   st.Owner,
		Minter:  st.Minter,
	}, acc
}
