package abi

import (
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/cell"
)

// StateInit is the code and initial data an account is deployed with. The
// account's address is the hash of its StateInit cell, so the address of any
// contract can be computed from its code and initial storage alone.
type StateInit struct {
	Code *cell.Cell
	Data *cell.Cell
}

var _ cell.MarshalUnmarshaler = (*StateInit)(nil)

func maybeRef(c *cell.Cell) (tlb.Maybe[tlb.Ref[boc.Cell]], error) {
	var m tlb.Maybe[tlb.Ref[boc.Cell]]
	if c == nil {
		return m, nil
	}
	raw, err := c.BocCell()
	if err != nil {
		return m, err
	}
	m.Exists = true
	m.Value.Value = *raw
	return m, nil
}

func fromMaybeRef(m tlb.Maybe[tlb.Ref[boc.Cell]]) (*cell.Cell, error) {
	if !m.Exists {
		return nil, nil
	}
	raw := m.Value.Value
	return cell.FromBocCell(&raw)
}

// MarshalCell writes the StateInit layout with no split depth, no special
// flags and no libraries: bits 00 [code] [data] 0.
func (si *StateInit) MarshalCell(b *cell.Builder) error {
	var init tlb.StateInit
	var err error
	if init.Code, err = maybeRef(si.Code); err != nil {
		return xerrors.Errorf("code: %w", err)
	}
	if init.Data, err = maybeRef(si.Data); err != nil {
		return xerrors.Errorf("data: %w", err)
	}
	return b.StoreTLB(&init).Err()
}

// UnmarshalCell accepts any split depth, special flags and libraries, and
// keeps only code and data.
func (si *StateInit) UnmarshalCell(s *cell.Slice) error {
	var init tlb.StateInit
	if err := s.LoadTLB(&init); err != nil {
		return err
	}
	var err error
	if si.Code, err = fromMaybeRef(init.Code); err != nil {
		return xerrors.Errorf("code: %w", err)
	}
	if si.Data, err = fromMaybeRef(init.Data); err != nil {
		return xerrors.Errorf("data: %w", err)
	}
	return nil
}

// Address derives the contract address of si in the given workchain.
func (si *StateInit) Address(workchain int8) (Address, error) {
	if si.Code == nil || si.Data == nil {
		return Undef, xerrors.New("state init requires both code and data")
	}
	c, err := cell.Marshal(si)
	if err != nil {
		return Undef, xerrors.Errorf("failed to marshal state init: %w", err)
	}
	return NewAddress(workchain, c.Hash()), nil
}

// ContractAddress derives the address a contract with the given code and
// initial data is deployed at.
func ContractAddress(workchain int8, code, data *cell.Cell) (Address, error) {
	si := StateInit{Code: code, Data: data}
	return si.Address(workchain)
}
