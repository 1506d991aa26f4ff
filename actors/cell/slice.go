package cell

import (
	gbig "math/big"
	"unicode/utf8"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	"golang.org/x/xerrors"
)

// Slice is a read cursor over the bits and references of a cell. It reads a
// private boc copy of the cell, so slices of a shared cell never interfere.
type Slice struct {
	cell *Cell
	raw  *boc.Cell
	err  error
}

// Copy returns an independent cursor at the same position.
func (s *Slice) Copy() *Slice {
	if s.err != nil {
		return &Slice{cell: s.cell, err: s.err}
	}
	raw := *s.raw
	return &Slice{cell: s.cell, raw: &raw}
}

func (s *Slice) RemainingBits() int {
	if s.err != nil {
		return 0
	}
	return s.raw.BitsAvailableForRead()
}

func (s *Slice) RemainingRefs() int {
	if s.err != nil {
		return 0
	}
	return s.raw.RefsAvailableForRead()
}

func (s *Slice) need(n int) error {
	if s.err != nil {
		return s.err
	}
	if n < 0 {
		return xerrors.Errorf("negative width %d: %w", n, ErrValueOverflow)
	}
	if s.RemainingBits() < n {
		return xerrors.Errorf("read %d bits with %d left: %w", n, s.RemainingBits(), ErrNotEnoughBits)
	}
	return nil
}

func (s *Slice) LoadBit() (bool, error) {
	if err := s.need(1); err != nil {
		return false, err
	}
	return s.raw.ReadBit()
}

func (s *Slice) LoadBool() (bool, error) {
	return s.LoadBit()
}

// LoadUint reads an unsigned integer of n bits, n <= 64.
func (s *Slice) LoadUint(n int) (uint64, error) {
	if n > 64 {
		return 0, xerrors.Errorf("uint%d: %w", n, ErrValueOverflow)
	}
	if err := s.need(n); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return s.raw.ReadUint(n)
}

// PreloadUint reads without advancing the cursor.
func (s *Slice) PreloadUint(n int) (uint64, error) {
	return s.Copy().LoadUint(n)
}

// LoadInt reads a two's complement integer of n bits, 0 < n <= 64.
func (s *Slice) LoadInt(n int) (int64, error) {
	if n <= 0 || n > 64 {
		return 0, xerrors.Errorf("int%d: %w", n, ErrValueOverflow)
	}
	if err := s.need(n); err != nil {
		return 0, err
	}
	return s.raw.ReadInt(n)
}

func (s *Slice) LoadBigUint(n int) (*gbig.Int, error) {
	if err := s.need(n); err != nil {
		return nil, err
	}
	v := new(gbig.Int)
	for left := n; left > 0; {
		w := left
		if w > 64 {
			w = 64
		}
		left -= w
		chunk, err := s.raw.ReadUint(w)
		if err != nil {
			return nil, err
		}
		v.Lsh(v, uint(w))
		v.Or(v, new(gbig.Int).SetUint64(chunk))
	}
	return v, nil
}

// LoadBits reads n bits and returns them packed MSB first, zero padded to a
// whole number of bytes.
func (s *Slice) LoadBits(n int) ([]byte, error) {
	if err := s.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, 0, (n+7)/8)
	for i := 0; i < n/8; i++ {
		v, err := s.raw.ReadUint(8)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(v))
	}
	if rem := n % 8; rem != 0 {
		v, err := s.raw.ReadUint(rem)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(v<<uint(8-rem)))
	}
	return out, nil
}

func (s *Slice) LoadBytes(n int) ([]byte, error) {
	return s.LoadBits(n * 8)
}

// LoadCoins reads a VarUInteger16 amount.
func (s *Slice) LoadCoins() (big.Int, error) {
	size, err := s.PreloadUint(4)
	if err != nil {
		return big.Zero(), xerrors.Errorf("coins length: %w", err)
	}
	if err := s.need(4 + int(size)*8); err != nil {
		return big.Zero(), xerrors.Errorf("coins value: %w", err)
	}
	var coins tlb.VarUInteger16
	if err := s.LoadTLB(&coins); err != nil {
		return big.Zero(), err
	}
	v := gbig.Int(coins)
	return big.NewFromGo(&v), nil
}

// LoadTLB decodes v with tongo's TL-B decoder from the current position.
func (s *Slice) LoadTLB(v interface{}) error {
	if s.err != nil {
		return s.err
	}
	if err := tlb.Unmarshal(s.raw, v); err != nil {
		return xerrors.Errorf("load %T: %w", v, err)
	}
	return nil
}

func (s *Slice) LoadRef() (*Cell, error) {
	if s.RemainingRefs() < 1 {
		return nil, xerrors.Errorf("load ref %d: %w", s.loadedRefs(), ErrNotEnoughRefs)
	}
	i := s.loadedRefs()
	if _, err := s.raw.NextRef(); err != nil {
		return nil, xerrors.Errorf("load ref %d: %w", i, err)
	}
	return s.cell.refs[i], nil
}

func (s *Slice) loadedRefs() int {
	return len(s.cell.refs) - s.RemainingRefs()
}

// LoadMaybeRef reads a presence bit and, when set, a reference. A clear bit
// yields a nil cell.
func (s *Slice) LoadMaybeRef() (*Cell, error) {
	present, err := s.LoadBit()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return s.LoadRef()
}

// LoadSnakeBytes reads the remaining bytes of this cell followed by the chain
// continued through the first reference.
func (s *Slice) LoadSnakeBytes() ([]byte, error) {
	var out []byte
	cur := s
	for {
		if cur.RemainingBits()%8 != 0 {
			return nil, xerrors.Errorf("snake segment of %d bits: %w", cur.RemainingBits(), ErrTrailingData)
		}
		p, err := cur.LoadBytes(cur.RemainingBits() / 8)
		if err != nil {
			return nil, err
		}
		out = append(out, p...)
		if cur.RemainingRefs() == 0 {
			return out, nil
		}
		next, err := cur.LoadRef()
		if err != nil {
			return nil, err
		}
		cur = next.BeginParse()
	}
}

// LoadStringTail reads a snake string and requires it to be valid UTF-8.
func (s *Slice) LoadStringTail() (string, error) {
	p, err := s.LoadSnakeBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", xerrors.New("snake string is not valid utf-8")
	}
	return string(p), nil
}

// Skip advances the cursor by n bits.
func (s *Slice) Skip(n int) error {
	_, err := s.LoadBits(n)
	return err
}

// EndParse fails unless every bit and reference has been consumed.
func (s *Slice) EndParse() error {
	if s.err != nil {
		return s.err
	}
	if s.RemainingBits() != 0 {
		return xerrors.Errorf("%d bits left: %w", s.RemainingBits(), ErrTrailingData)
	}
	if s.RemainingRefs() != 0 {
		return xerrors.Errorf("%d refs left: %w", s.RemainingRefs(), ErrRefCountMismatch)
	}
	return nil
}

// ToCell seals the unread part of the slice into a new cell.
func (s *Slice) ToCell() (*Cell, error) {
	return BeginCell().StoreSlice(s).EndCell()
}
