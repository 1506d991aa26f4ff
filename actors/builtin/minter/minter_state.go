package minter

import (
	"github.com/filecoin-project/go-state-types/big"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/builtin/wallet"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

// State is the storage of a jetton minter.
type State struct {
	TotalSupply abi.TokenAmount
	// Whether the admin may still mint.
	Mintable bool
	// Close minting after the first successful mint.
	CloseAfterMint bool
	Admin          abi.Address
	// Metadata blob, see the content package.
	Content    *cell.Cell
	WalletCode *cell.Cell
}

var _ cell.MarshalUnmarshaler = (*State)(nil)

// ConstructState returns the storage a minter is deployed with: nothing
// minted and minting open.
func ConstructState(admin abi.Address, content, walletCode *cell.Cell, closeAfterMint bool) *State {
	return &State{
		TotalSupply:    big.Zero(),
		Mintable:       true,
		CloseAfterMint: closeAfterMint,
		Admin:          admin,
		Content:        content,
		WalletCode:     walletCode,
	}
}

func (st *State) MarshalCell(b *cell.Builder) error {
	b.StoreCoins(st.TotalSupply).
		StoreBool(st.Mintable).
		StoreBool(st.CloseAfterMint)
	abi.StoreAddress(b, st.Admin)
	b.StoreRef(st.Content).StoreRef(st.WalletCode)
	return b.Err()
}

func (st *State) UnmarshalCell(s *cell.Slice) (err error) {
	if st.TotalSupply, err = s.LoadCoins(); err != nil {
		return xerrors.Errorf("total supply: %w", err)
	}
	if st.Mintable, err = s.LoadBool(); err != nil {
		return xerrors.Errorf("mintable: %w", err)
	}
	if st.CloseAfterMint, err = s.LoadBool(); err != nil {
		return xerrors.Errorf("close after mint: %w", err)
	}
	if st.Admin, err = abi.LoadAddress(s); err != nil {
		return xerrors.Errorf("admin: %w", err)
	}
	if st.Content, err = s.LoadRef(); err != nil {
		return xerrors.Errorf("content: %w", err)
	}
	if st.WalletCode, err = s.LoadRef(); err != nil {
		return xerrors.Errorf("wallet code: %w", err)
	}
	return nil
}

// JettonData is the result of the jetton data getter.
type JettonData struct {
	TotalSupply abi.TokenAmount
	Mintable    bool
	Admin       abi.Address
	Content     *cell.Cell
	WalletCode  *cell.Cell
}

func (st *State) JettonData() JettonData {
	return JettonData{
		TotalSupply: st.TotalSupply,
		Mintable:    st.Mintable,
		Admin:       st.Admin,
		Content:     st.Content,
		WalletCode:  st.WalletCode,
	}
}

// WalletAddress derives the wallet of owner for the minter deployed at self.
func (st *State) WalletAddress(self, owner abi.Address) (abi.Address, error) {
	return wallet.Address(owner, self, st.WalletCode)
}

// mint records a successful mint and applies the one-shot policy.
func (st *State) mint(amount abi.TokenAmount) error {
	if !st.Mintable {
		return builtin.ErrMintingClosed.Wrapf("minting is closed")
	}
	st.TotalSupply = big.Add(st.TotalSupply, amount)
	if st.CloseAfterMint {
		st.Mintable = false
	}
	return nil
}

// burn removes amount from the supply.
func (st *State) burn(amount abi.TokenAmount) error {
	if amount.GreaterThan(st.TotalSupply) {
		return xerrors.Errorf("burn of %v exceeds total supply %v", amount, st.TotalSupply)
	}
	st.TotalSupply = big.Sub(st.TotalSupply, amount)
	return nil
}
