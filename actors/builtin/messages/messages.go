// Package messages defines the cell layouts of every jetton message body.
// Each body begins with its 32-bit op followed by a 64-bit query id.
package messages

import (
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

// ErrUnexpectedOp is returned when a body is decoded as the wrong kind.
var ErrUnexpectedOp = xerrors.New("unexpected op")

// Body is implemented by every message kind.
type Body interface {
	cell.MarshalUnmarshaler
	Op() abi.Op
}

var (
	_ Body = (*Transfer)(nil)
	_ Body = (*InternalTransfer)(nil)
	_ Body = (*TransferNotification)(nil)
	_ Body = (*Excesses)(nil)
	_ Body = (*Burn)(nil)
	_ Body = (*BurnNotification)(nil)
	_ Body = (*Mint)(nil)
	_ Body = (*ChangeAdmin)(nil)
	_ Body = (*ChangeContent)(nil)
	_ Body = (*ProvideWalletAddress)(nil)
	_ Body = (*TakeWalletAddress)(nil)
)

func storeHeader(b *cell.Builder, op abi.Op, queryID abi.QueryID) {
	b.StoreUint(uint64(op), 32).StoreUint(queryID, 64)
}

func loadHeader(s *cell.Slice, want abi.Op) (abi.QueryID, error) {
	op, err := s.LoadUint(32)
	if err != nil {
		return 0, xerrors.Errorf("op: %w", err)
	}
	if abi.Op(op) != want {
		return 0, xerrors.Errorf("got %s, want %s: %w", abi.Op(op), want, ErrUnexpectedOp)
	}
	q, err := s.LoadUint(64)
	if err != nil {
		return 0, xerrors.Errorf("query id: %w", err)
	}
	return q, nil
}

// Transfer asks a wallet to move jettons to the wallet of another owner.
type Transfer struct {
	QueryID             abi.QueryID
	Amount              abi.TokenAmount
	Destination         abi.Address
	ResponseDestination abi.Address
	CustomPayload       *cell.Cell
	ForwardTonAmount    abi.TokenAmount
	ForwardPayload      *cell.Cell
}

func (m *Transfer) Op() abi.Op { return builtin.MethodsWallet.Transfer }

func (m *Transfer) MarshalCell(b *cell.Builder) error {
	storeHeader(b, m.Op(), m.QueryID)
	b.StoreCoins(m.Amount)
	abi.StoreAddress(b, m.Destination)
	abi.StoreAddress(b, m.ResponseDestination)
	b.StoreMaybeRef(m.CustomPayload).
		StoreCoins(m.ForwardTonAmount).
		StoreMaybeRef(m.ForwardPayload)
	return b.Err()
}

func (m *Transfer) UnmarshalCell(s *cell.Slice) (err error) {
	if m.QueryID, err = loadHeader(s, m.Op()); err != nil {
		return err
	}
	if m.Amount, err = s.LoadCoins(); err != nil {
		return xerrors.Errorf("amount: %w", err)
	}
	if m.Destination, err = abi.LoadStdAddress(s); err != nil {
		return xerrors.Errorf("destination: %w", err)
	}
	if m.ResponseDestination, err = abi.LoadAddress(s); err != nil {
		return xerrors.Errorf("response destination: %w", err)
	}
	if m.CustomPayload, err = s.LoadMaybeRef(); err != nil {
		return xerrors.Errorf("custom payload: %w", err)
	}
	if m.ForwardTonAmount, err = s.LoadCoins(); err != nil {
		return xerrors.Errorf("forward ton amount: %w", err)
	}
	if m.ForwardPayload, err = s.LoadMaybeRef(); err != nil {
		return xerrors.Errorf("forward payload: %w", err)
	}
	return nil
}

// InternalTransfer credits a wallet. It is sent wallet to wallet, and by the
// minter as the payload of a mint.
type InternalTransfer struct {
	QueryID          abi.QueryID
	Amount           abi.TokenAmount
	From             abi.Address
	ResponseAddress  abi.Address
	ForwardTonAmount abi.TokenAmount
	ForwardPayload   *cell.Cell
}

func (m *InternalTransfer) Op() abi.Op { return builtin.MethodsWallet.InternalTransfer }

func (m *InternalTransfer) MarshalCell(b *cell.Builder) error {
	storeHeader(b, m.Op(), m.QueryID)
	b.StoreCoins(m.Amount)
	abi.StoreAddress(b, m.From)
	abi.StoreAddress(b, m.ResponseAddress)
	b.StoreCoins(m.ForwardTonAmount).StoreMaybeRef(m.ForwardPayload)
	return b.Err()
}

func (m *InternalTransfer) UnmarshalCell(s *cell.Slice) (err error) {
	if m.QueryID, err = loadHeader(s, m.Op()); err != nil {
		return err
	}
	if m.Amount, err = s.LoadCoins(); err != nil {
		return xerrors.Errorf("amount: %w", err)
	}
	if m.From, err = abi.LoadAddress(s); err != nil {
		return xerrors.Errorf("from: %w", err)
	}
	if m.ResponseAddress, err = abi.LoadAddress(s); err != nil {
		return xerrors.Errorf("response address: %w", err)
	}
	if m.ForwardTonAmount, err = s.LoadCoins(); err != nil {
		return xerrors.Errorf("forward ton amount: %w", err)
	}
	if m.ForwardPayload, err = s.LoadMaybeRef(); err != nil {
		return xerrors.Errorf("forward payload: %w", err)
	}
	return nil
}

// TransferNotification tells a wallet owner about an incoming transfer.
type TransferNotification struct {
	QueryID        abi.QueryID
	Amount         abi.TokenAmount
	Sender         abi.Address
	ForwardPayload *cell.Cell
}

func (m *TransferNotification) Op() abi.Op { return builtin.MethodsAccount.TransferNotification }

func (m *TransferNotification) MarshalCell(b *cell.Builder) error {
	storeHeader(b, m.Op(), m.QueryID)
	b.StoreCoins(m.Amount)
	abi.StoreAddress(b, m.Sender)
	b.StoreMaybeRef(m.ForwardPayload)
	return b.Err()
}

func (m *TransferNotification) UnmarshalCell(s *cell.Slice) (err error) {
	if m.QueryID, err = loadHeader(s, m.Op()); err != nil {
		return err
	}
	if m.Amount, err = s.LoadCoins(); err != nil {
		return xerrors.Errorf("amount: %w", err)
	}
	if m.Sender, err = abi.LoadAddress(s); err != nil {
		return xerrors.Errorf("sender: %w", err)
	}
	if m.ForwardPayload, err = s.LoadMaybeRef(); err != nil {
		return xerrors.Errorf("forward payload: %w", err)
	}
	return nil
}

// Excesses returns unspent attached value to a response destination.
type Excesses struct {
	QueryID abi.QueryID
}

func (m *Excesses) Op() abi.Op { return builtin.MethodsAccount.Excesses }

func (m *Excesses) MarshalCell(b *cell.Builder) error {
	storeHeader(b, m.Op(), m.QueryID)
	return b.Err()
}

func (m *Excesses) UnmarshalCell(s *cell.Slice) (err error) {
	m.QueryID, err = loadHeader(s, m.Op())
	return err
}

// Burn asks a wallet to destroy jettons.
type Burn struct {
	QueryID             abi.QueryID
	Amount              abi.TokenAmount
	ResponseDestination abi.Address
	CustomPayload       *cell.Cell
}

func (m *Burn) Op() abi.Op { return builtin.MethodsWallet.Burn }

func (m *Burn) MarshalCell(b *cell.Builder) error {
	storeHeader(b, m.Op(), m.QueryID)
	b.StoreCoins(m.Amount)
	abi.StoreAddress(b, m.ResponseDestination)
	b.StoreMaybeRef(m.CustomPayload)
	return b.Err()
}

func (m *Burn) UnmarshalCell(s *cell.Slice) (err error) {
	if m.QueryID, err = loadHeader(s, m.Op()); err != nil {
		return err
	}
	if m.Amount, err = s.LoadCoins(); err != nil {
		return xerrors.Errorf("amount: %w", err)
	}
	if m.ResponseDestination, err = abi.LoadAddress(s); err != nil {
		return xerrors.Errorf("response destination: %w", err)
	}
	if m.CustomPayload, err = s.LoadMaybeRef(); err != nil {
		return xerrors.Errorf("custom payload: %w", err)
	}
	return nil
}

// BurnNotification informs the minter that a wallet destroyed jettons.
type BurnNotification struct {
	QueryID             abi.QueryID
	Amount              abi.TokenAmount
	Sender              abi.Address
	ResponseDestination abi.Address
}

func (m *BurnNotification) Op() abi.Op { return builtin.MethodsMinter.BurnNotification }

func (m *BurnNotification) MarshalCell(b *cell.Builder) error {
	storeHeader(b, m.Op(), m.QueryID)
	b.StoreCoins(m.Amount)
	abi.StoreAddress(b, m.Sender)
	abi.StoreAddress(b, m.ResponseDestination)
	return b.Err()
}

func (m *BurnNotification) UnmarshalCell(s *cell.Slice) (err error) {
	if m.QueryID, err = loadHeader(s, m.Op()); err != nil {
		return err
	}
	if m.Amount, err = s.LoadCoins(); err != nil {
		return xerrors.Errorf("amount: %w", err)
	}
	if m.Sender, err = abi.LoadStdAddress(s); err != nil {
		return xerrors.Errorf("sender: %w", err)
	}
	if m.ResponseDestination, err = abi.LoadAddress(s); err != nil {
		return xerrors.Errorf("response destination: %w", err)
	}
	return nil
}

// Mint asks the minter to credit a new amount to the wallet of To. MasterMsg
// is forwarded verbatim to that wallet.
type Mint struct {
	QueryID   abi.QueryID
	To        abi.Address
	TonAmount abi.TokenAmount
	MasterMsg InternalTransfer
}

func (m *Mint) Op() abi.Op { return builtin.MethodsMinter.Mint }

func (m *Mint) MarshalCell(b *cell.Builder) error {
	master, err := cell.Marshal(&m.MasterMsg)
	if err != nil {
		return xerrors.Errorf("master message: %w", err)
	}
	storeHeader(b, m.Op(), m.QueryID)
	abi.StoreAddress(b, m.To)
	b.StoreCoins(m.TonAmount).StoreRef(master)
	return b.Err()
}

func (m *Mint) UnmarshalCell(s *cell.Slice) (err error) {
	if m.QueryID, err = loadHeader(s, m.Op()); err != nil {
		return err
	}
	if m.To, err = abi.LoadStdAddress(s); err != nil {
		return xerrors.Errorf("to: %w", err)
	}
	if m.TonAmount, err = s.LoadCoins(); err != nil {
		return xerrors.Errorf("ton amount: %w", err)
	}
	master, err := s.LoadRef()
	if err != nil {
		return xerrors.Errorf("master message: %w", err)
	}
	if err := cell.Unmarshal(master, &m.MasterMsg); err != nil {
		return xerrors.Errorf("master message: %w", err)
	}
	return nil
}

type ChangeAdmin struct {
	QueryID  abi.QueryID
	NewAdmin abi.Address
}

func (m *ChangeAdmin) Op() abi.Op { return builtin.MethodsMinter.ChangeAdmin }

func (m *ChangeAdmin) MarshalCell(b *cell.Builder) error {
	storeHeader(b, m.Op(), m.QueryID)
	abi.StoreAddress(b, m.NewAdmin)
	return b.Err()
}

func (m *ChangeAdmin) UnmarshalCell(s *cell.Slice) (err error) {
	if m.QueryID, err = loadHeader(s, m.Op()); err != nil {
		return err
	}
	if m.NewAdmin, err = abi.LoadAddress(s); err != nil {
		return xerrors.Errorf("new admin: %w", err)
	}
	return nil
}

type ChangeContent struct {
	QueryID abi.QueryID
	Content *cell.Cell
}

func (m *ChangeContent) Op() abi.Op { return builtin.MethodsMinter.ChangeContent }

func (m *ChangeContent) MarshalCell(b *cell.Builder) error {
	storeHeader(b, m.Op(), m.QueryID)
	b.StoreRef(m.Content)
	return b.Err()
}

func (m *ChangeContent) UnmarshalCell(s *cell.Slice) (err error) {
	if m.QueryID, err = loadHeader(s, m.Op()); err != nil {
		return err
	}
	if m.Content, err = s.LoadRef(); err != nil {
		return xerrors.Errorf("content: %w", err)
	}
	return nil
}

// ProvideWalletAddress asks the minter for the wallet address of Owner.
type ProvideWalletAddress struct {
	QueryID        abi.QueryID
	Owner          abi.Address
	IncludeAddress bool
}

func (m *ProvideWalletAddress) Op() abi.Op { return builtin.MethodsMinter.ProvideWalletAddress }

func (m *ProvideWalletAddress) MarshalCell(b *cell.Builder) error {
	storeHeader(b, m.Op(), m.QueryID)
	abi.StoreAddress(b, m.Owner)
	b.StoreBool(m.IncludeAddress)
	return b.Err()
}

func (m *ProvideWalletAddress) UnmarshalCell(s *cell.Slice) (err error) {
	if m.QueryID, err = loadHeader(s, m.Op()); err != nil {
		return err
	}
	if m.Owner, err = abi.LoadStdAddress(s); err != nil {
		return xerrors.Errorf("owner: %w", err)
	}
	if m.IncludeAddress, err = s.LoadBool(); err != nil {
		return xerrors.Errorf("include address: %w", err)
	}
	return nil
}

// TakeWalletAddress answers ProvideWalletAddress. Owner is Undef unless the
// request asked for it.
type TakeWalletAddress struct {
	QueryID       abi.QueryID
	WalletAddress abi.Address
	Owner         abi.Address
}

func (m *TakeWalletAddress) Op() abi.Op { return builtin.MethodsAccount.TakeWalletAddress }

func (m *TakeWalletAddress) MarshalCell(b *cell.Builder) error {
	storeHeader(b, m.Op(), m.QueryID)
	abi.StoreAddress(b, m.WalletAddress)
	if m.Owner.Empty() {
		b.StoreMaybeRef(nil)
		return b.Err()
	}
	owner, err := abi.StoreAddress(cell.BeginCell(), m.Owner).EndCell()
	if err != nil {
		return xerrors.Errorf("owner: %w", err)
	}
	b.StoreMaybeRef(owner)
	return b.Err()
}

func (m *TakeWalletAddress) UnmarshalCell(s *cell.Slice) (err error) {
	if m.QueryID, err = loadHeader(s, m.Op()); err != nil {
		return err
	}
	if m.WalletAddress, err = abi.LoadAddress(s); err != nil {
		return xerrors.Errorf("wallet address: %w", err)
	}
	owner, err := s.LoadMaybeRef()
	if err != nil {
		return xerrors.Errorf("owner: %w", err)
	}
	m.Owner = abi.Undef
	if owner != nil {
		os := owner.BeginParse()
		if m.Owner, err = abi.LoadAddress(os); err != nil {
			return xerrors.Errorf("owner: %w", err)
		}
		if err := os.EndParse(); err != nil {
			return xerrors.Errorf("owner: %w", err)
		}
	}
	return nil
}
