package abi

import (
	"math"
	"strings"

	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/ton"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/cell"
)

// Address identifies an account by workchain and 256-bit account hash.
// The zero value is the absent address (addr_none).
type Address struct {
	workchain int8
	hash      [32]byte
	defined   bool
}

// Undef is the absent address.
var Undef = Address{}

// ErrUnsupportedAddress is returned when decoding an address variant other
// than addr_none or a plain addr_std.
var ErrUnsupportedAddress = xerrors.New("unsupported address variant")

func NewAddress(workchain int8, hash [32]byte) Address {
	return Address{workchain: workchain, hash: hash, defined: true}
}

func (a Address) Empty() bool {
	return !a.defined
}

func (a Address) Workchain() int8 {
	return a.workchain
}

func (a Address) Hash() [32]byte {
	return a.hash
}

// Bytes returns the workchain byte followed by the hash, or nil for Undef.
func (a Address) Bytes() []byte {
	if !a.defined {
		return nil
	}
	out := make([]byte, 33)
	out[0] = byte(a.workchain)
	copy(out[1:], a.hash[:])
	return out
}

// AddressFromBytes is the inverse of Bytes.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) == 0 {
		return Undef, nil
	}
	if len(b) != 33 {
		return Undef, xerrors.Errorf("address of %d bytes", len(b))
	}
	var h [32]byte
	copy(h[:], b[1:])
	return NewAddress(int8(b[0]), h), nil
}

// Key implements the map key interface of the state tree.
func (a Address) Key() string {
	return string(a.Bytes())
}

// String renders the raw form "workchain:hex".
func (a Address) String() string {
	if !a.defined {
		return "<none>"
	}
	return a.accountID().ToRaw()
}

// ParseAddress accepts either the raw form or the 48 character user-friendly form.
func ParseAddress(s string) (Address, error) {
	if !strings.Contains(s, ":") {
		fa, err := ParseFriendly(s)
		if err != nil {
			return Undef, err
		}
		return fa.Address, nil
	}
	id, err := ton.ParseAccountID(s)
	if err != nil {
		return Undef, xerrors.Errorf("parse address %q: %w", s, err)
	}
	return fromAccountID(id)
}

func fromAccountID(id ton.AccountID) (Address, error) {
	if id.Workchain < math.MinInt8 || id.Workchain > math.MaxInt8 {
		return Undef, xerrors.Errorf("workchain %d: %w", id.Workchain, ErrUnsupportedAddress)
	}
	return NewAddress(int8(id.Workchain), id.Address), nil
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	if string(text) == "<none>" || len(text) == 0 {
		*a = Undef
		return nil
	}
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Address) accountID() ton.AccountID {
	return ton.AccountID{Workchain: int32(a.workchain), Address: a.hash}
}

// MsgAddress converts a to its TL-B form: addr_none or addr_std without
// anycast.
func (a Address) MsgAddress() tlb.MsgAddress {
	if !a.defined {
		return tlb.MsgAddress{SumType: "AddrNone"}
	}
	id := a.accountID()
	return id.ToMsgAddress()
}

// AddressFromMsgAddress accepts addr_none and addr_std without anycast.
func AddressFromMsgAddress(m tlb.MsgAddress) (Address, error) {
	switch m.SumType {
	case "AddrNone":
		return Undef, nil
	case "AddrStd":
		if m.AddrStd.Anycast.Exists {
			return Undef, xerrors.Errorf("anycast: %w", ErrUnsupportedAddress)
		}
		return NewAddress(m.AddrStd.WorkchainId, [32]byte(m.AddrStd.Address)), nil
	}
	return Undef, xerrors.Errorf("%s: %w", m.SumType, ErrUnsupportedAddress)
}

// StoreAddress writes addr_none as 00 and a standard address as
// 10, a clear anycast bit, an 8-bit workchain and the 256-bit hash.
func StoreAddress(b *cell.Builder, a Address) *cell.Builder {
	m := a.MsgAddress()
	return b.StoreTLB(&m)
}

func LoadAddress(s *cell.Slice) (Address, error) {
	var m tlb.MsgAddress
	if err := s.LoadTLB(&m); err != nil {
		return Undef, xerrors.Errorf("address: %w", err)
	}
	return AddressFromMsgAddress(m)
}

// LoadStdAddress is LoadAddress that rejects addr_none.
func LoadStdAddress(s *cell.Slice) (Address, error) {
	a, err := LoadAddress(s)
	if err != nil {
		return Undef, err
	}
	if a.Empty() {
		return Undef, xerrors.Errorf("expected a standard address, got addr_none: %w", ErrUnsupportedAddress)
	}
	return a, nil
}
