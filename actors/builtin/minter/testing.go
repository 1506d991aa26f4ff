package minter

import (
	"github.com/filecoin-project/go-state-types/big"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
)

type StateSummary struct {
	TotalSupply abi.TokenAmount
	Mintable    bool
	Admin       abi.Address
}

// Checks internal invariants of minter state.
func CheckStateInvariants(st *State) (*StateSummary, *builtin.MessageAccumulator) {
	acc := &builtin.MessageAccumulator{}

	acc.Require(st.TotalSupply.GreaterThanEqual(big.Zero()), "total supply %v is negative", st.TotalSupply)
	acc.Require(st.WalletCode != nil, "minter has no wallet code")
	acc.Require(st.Content != nil, "minter has no content")
	if st.CloseAfterMint && st.TotalSupply.GreaterThan(big.Zero()) {
		acc.Require(!st.Mintable, "one-shot minter with supply %v is still mintable", st.TotalSupply)
	}

	return &StateSummary{
		TotalSupply: st.TotalSupply,
		Mintable:    st.Mintable,
		Admin:       st.Admin,
	}, acc
}
