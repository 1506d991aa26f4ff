package messages

import (
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

// BouncedBodyBits is how much of the original body a bounced message keeps.
const BouncedBodyBits = 256

// Bounced is a failed delivery returned to its sender: the bounce marker
// followed by the leading bits of the original body, without references.
type Bounced struct {
	// Op and QueryID of the original message.
	Op      abi.Op
	QueryID abi.QueryID
	// Rest of the retained original body after op and query id.
	Rest *cell.Cell
}

func (m *Bounced) MarshalCell(b *cell.Builder) error {
	b.StoreUint(uint64(abi.OpBounced), 32).
		StoreUint(uint64(m.Op), 32).
		StoreUint(m.QueryID, 64)
	if m.Rest != nil {
		b.StoreSlice(m.Rest.BeginParse())
	}
	return b.Err()
}

func (m *Bounced) UnmarshalCell(s *cell.Slice) error {
	marker, err := s.LoadUint(32)
	if err != nil {
		return xerrors.Errorf("bounce marker: %w", err)
	}
	if abi.Op(marker) != abi.OpBounced {
		return xerrors.Errorf("got %s, want bounce marker: %w", abi.Op(marker), ErrUnexpectedOp)
	}
	op, err := s.LoadUint(32)
	if err != nil {
		return xerrors.Errorf("bounced op: %w", err)
	}
	m.Op = abi.Op(op)
	if m.QueryID, err = s.LoadUint(64); err != nil {
		return xerrors.Errorf("bounced query id: %w", err)
	}
	if m.Rest, err = s.ToCell(); err != nil {
		return err
	}
	// ToCell reads from a copy; consume the remainder here.
	return s.Skip(s.RemainingBits())
}

// Amount reads the coins field that leads the rest of internal_transfer and
// burn_notification bodies.
func (m *Bounced) Amount() (abi.TokenAmount, error) {
	if m.Rest == nil {
		return abi.NewTokenAmount(0), xerrors.Errorf("bounced %s carries no amount: %w", m.Op, cell.ErrNotEnoughBits)
	}
	return m.Rest.BeginParse().LoadCoins()
}

// BounceBody builds the body returned to the sender of a failed message.
func BounceBody(original *cell.Cell) (*cell.Cell, error) {
	b := cell.BeginCell().StoreUint(uint64(abi.OpBounced), 32)
	if original != nil {
		s := original.BeginParse()
		n := s.RemainingBits()
		if n > BouncedBodyBits {
			n = BouncedBodyBits
		}
		bits, err := s.LoadBits(n)
		if err != nil {
			return nil, err
		}
		b.StoreBits(bits, n)
	}
	return b.EndCell()
}

// Decode reads the op of a body and decodes it into the matching kind.
func Decode(c *cell.Cell) (Body, error) {
	op, err := c.BeginParse().PreloadUint(32)
	if err != nil {
		return nil, xerrors.Errorf("op: %w", err)
	}
	var body Body
	switch abi.Op(op) {
	case builtin.MethodsWallet.Transfer:
		body = new(Transfer)
	case builtin.MethodsWallet.InternalTransfer:
		body = new(InternalTransfer)
	case builtin.MethodsWallet.Burn:
		body = new(Burn)
	case builtin.MethodsAccount.TransferNotification:
		body = new(TransferNotification)
	case builtin.MethodsAccount.Excesses:
		body = new(Excesses)
	case builtin.MethodsAccount.TakeWalletAddress:
		body = new(TakeWalletAddress)
	case builtin.MethodsMinter.Mint:
		body = new(Mint)
	case builtin.MethodsMinter.BurnNotification:
		body = new(BurnNotification)
	case builtin.MethodsMinter.ChangeAdmin:
		body = new(ChangeAdmin)
	case builtin.MethodsMinter.ChangeContent:
		body = new(ChangeContent)
	case builtin.MethodsMinter.ProvideWalletAddress:
		body = new(ProvideWalletAddress)
	default:
		return nil, xerrors.Errorf("decode %s: %w", abi.Op(op), ErrUnexpectedOp)
	}
	if err := cell.Unmarshal(c, body); err != nil {
		return nil, err
	}
	return body, nil
}
