package wallet

import (
	"github.com/filecoin-project/go-state-types/big"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

// State is the storage of a jetton wallet: the jettons one owner holds under
// one minter.
type State struct {
	Balance abi.TokenAmount
	Owner   abi.Address
	Minter  abi.Address
	// Code every wallet of this jetton runs. Used to derive peer wallets.
	WalletCode *cell.Cell
}

var _ cell.MarshalUnmarshaler = (*State)(nil)

// ConstructState returns the storage a wallet is deployed with: zero balance.
func ConstructState(owner, minter abi.Address, walletCode *cell.Cell) *State {
	return &State{
		Balance:    big.Zero(),
		Owner:      owner,
		Minter:     minter,
		WalletCode: walletCode,
	}
}

func (st *State) MarshalCell(b *cell.Builder) error {
	b.StoreCoins(st.Balance)
	abi.StoreAddress(b, st.Owner)
	abi.StoreAddress(b, st.Minter)
	b.StoreRef(st.WalletCode)
	return b.Err()
}

func (st *State) UnmarshalCell(s *cell.Slice) (err error) {
	if st.Balance, err = s.LoadCoins(); err != nil {
		return xerrors.Errorf("balance: %w", err)
	}
	if st.Owner, err = abi.LoadStdAddress(s); err != nil {
		return xerrors.Errorf("owner: %w", err)
	}
	if st.Minter, err = abi.LoadStdAddress(s); err != nil {
		return xerrors.Errorf("minter: %w", err)
	}
	if st.WalletCode, err = s.LoadRef(); err != nil {
		return xerrors.Errorf("wallet code: %w", err)
	}
	return nil
}

// StateInit returns the code and initial storage of the wallet of owner.
func StateInit(owner, minter abi.Address, walletCode *cell.Cell) (*abi.StateInit, error) {
	data, err := cell.Marshal(ConstructState(owner, minter, walletCode))
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal wallet state: %w", err)
	}
	return &abi.StateInit{Code: walletCode, Data: data}, nil
}

// Address derives the wallet of owner under minter. Wallets live in the
// minter's workchain.
func Address(owner, minter abi.Address, walletCode *cell.Cell) (abi.Address, error) {
	si, err := StateInit(owner, minter, walletCode)
	if err != nil {
		return abi.Undef, err
	}
	return si.Address(minter.Workchain())
}

// WalletData is the result of the wallet data getter.
type WalletData struct {
	Balance    abi.TokenAmount
	Owner      abi.Address
	Minter     abi.Address
	WalletCode *cell.Cell
}

func (st *State) WalletData() WalletData {
	return WalletData{
		Balance:    st.Balance,
		Owner:      st.Owner,
		Minter:     st.Minter,
		WalletCode: st.WalletCode,
	}
}

// debit removes amount from the balance, failing when it would go negative.
func (st *State) debit(amount abi.TokenAmount) error {
	if amount.GreaterThan(st.Balance) {
		return builtin.ErrBalanceTooLow.Wrapf("amount %v exceeds balance %v", amount, st.Balance)
	}
	st.Balance = big.Sub(st.Balance, amount)
	return nil
}

func (st *State) credit(amount abi.TokenAmount) {
	st.Balance = big.Add(st.Balance, amount)
}
