// Package cell is the tree-of-cells data model: bounded bit strings with up
// to four child references, content-addressed by representation hash. Cells
// are immutable values over tongo's boc cells; builders and slices add
// sticky errors and strict parsing on top.
package cell

import (
	"encoding/hex"
	"fmt"

	"github.com/tonkeeper/tongo/boc"
	"golang.org/x/xerrors"
)

const (
	MaxBits = 1023
	MaxRefs = 4
)

// Cell is an immutable ordinary cell. The hash and depth are computed once,
// when the cell is sealed. A Cell never hands out the boc cell it was hashed
// from, so it is safe to share between goroutines.
type Cell struct {
	data  []byte
	bits  int
	refs  []*Cell
	hash  [32]byte
	depth uint16
}

var emptyCell = mustSeal(nil, 0, nil)

// Empty returns the cell with no bits and no references.
func Empty() *Cell {
	return emptyCell
}

func mustSeal(data []byte, bits int, refs []*Cell) *Cell {
	c, err := seal(data, bits, refs)
	if err != nil {
		panic(err)
	}
	return c
}

// seal builds a cell and computes its representation hash.
func seal(data []byte, bits int, refs []*Cell) (*Cell, error) {
	c := &Cell{data: data, bits: bits, refs: refs}
	for _, r := range refs {
		if r.depth+1 > c.depth {
			c.depth = r.depth + 1
		}
	}
	raw, err := c.toBoc()
	if err != nil {
		return nil, err
	}
	if c.hash, err = raw.Hash256(); err != nil {
		return nil, xerrors.Errorf("failed to hash cell: %w", err)
	}
	return c, nil
}

// toBoc builds a fresh boc tree holding the content of c. The result is
// owned by the caller, which may move its read cursors freely.
func (c *Cell) toBoc() (*boc.Cell, error) {
	raw := boc.NewCell()
	if err := writeBits(raw, c.data, c.bits); err != nil {
		return nil, err
	}
	for _, r := range c.refs {
		child, err := r.toBoc()
		if err != nil {
			return nil, err
		}
		if err := raw.AddRef(child); err != nil {
			return nil, xerrors.Errorf("add ref: %w", err)
		}
	}
	return raw, nil
}

// BocCell returns an independent boc copy of the tree rooted at c, for
// encoding through tlb.
func (c *Cell) BocCell() (*boc.Cell, error) {
	return c.toBoc()
}

// FromBocCell seals the tree rooted at raw. Read cursors of raw are left
// untouched.
func FromBocCell(raw *boc.Cell) (*Cell, error) {
	return fromBoc(raw, make(map[*boc.Cell]*Cell))
}

func fromBoc(raw *boc.Cell, seen map[*boc.Cell]*Cell) (*Cell, error) {
	if c, ok := seen[raw]; ok {
		return c, nil
	}
	if raw.IsExotic() {
		return nil, xerrors.Errorf("exotic cells are unsupported: %w", ErrInvalidBOC)
	}
	data, bits, err := readBits(raw)
	if err != nil {
		return nil, err
	}
	var refs []*Cell
	for _, r := range raw.Refs() {
		child, err := fromBoc(r, seen)
		if err != nil {
			return nil, err
		}
		refs = append(refs, child)
	}
	c, err := seal(data, bits, refs)
	if err != nil {
		return nil, err
	}
	seen[raw] = c
	return c, nil
}

// writeBits appends the first n bits of the packed, MSB first buffer data.
func writeBits(raw *boc.Cell, data []byte, n int) error {
	for i := 0; i < n/8; i++ {
		if err := raw.WriteUint(uint64(data[i]), 8); err != nil {
			return xerrors.Errorf("write byte %d: %w", i, err)
		}
	}
	if rem := n % 8; rem != 0 {
		if err := raw.WriteUint(uint64(data[n/8]>>uint(8-rem)), rem); err != nil {
			return xerrors.Errorf("write %d tail bits: %w", rem, err)
		}
	}
	return nil
}

// readBits returns the data bits of raw packed MSB first. It reads through a
// copy so the cursors of raw do not move.
func readBits(raw *boc.Cell) ([]byte, int, error) {
	r := *raw
	r.ResetCounters()
	n := r.BitSize()
	data := make([]byte, 0, (n+7)/8)
	for i := 0; i < n/8; i++ {
		v, err := r.ReadUint(8)
		if err != nil {
			return nil, 0, xerrors.Errorf("read byte %d: %w", i, err)
		}
		data = append(data, byte(v))
	}
	if rem := n % 8; rem != 0 {
		v, err := r.ReadUint(rem)
		if err != nil {
			return nil, 0, xerrors.Errorf("read %d tail bits: %w", rem, err)
		}
		data = append(data, byte(v<<uint(8-rem)))
	}
	return data, n, nil
}

// Hash returns the representation hash of the cell.
func (c *Cell) Hash() [32]byte {
	return c.hash
}

// Depth is zero for a cell without references, otherwise one more than the
// deepest child.
func (c *Cell) Depth() uint16 {
	return c.depth
}

func (c *Cell) BitLen() int {
	return c.bits
}

// Data returns a copy of the data bits packed MSB first.
func (c *Cell) Data() []byte {
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

func (c *Cell) RefCount() int {
	return len(c.refs)
}

func (c *Cell) Ref(i int) (*Cell, error) {
	if i < 0 || i >= len(c.refs) {
		return nil, xerrors.Errorf("ref %d of %d: %w", i, len(c.refs), ErrNotEnoughRefs)
	}
	return c.refs[i], nil
}

// Equals compares cells by representation hash.
func (c *Cell) Equals(o *Cell) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.hash == o.hash
}

// BeginParse returns a reader positioned at the start of the cell.
func (c *Cell) BeginParse() *Slice {
	raw, err := c.toBoc()
	return &Slice{cell: c, raw: raw, err: err}
}

func (c *Cell) String() string {
	return fmt.Sprintf("x{%s}[%d refs, depth %d]", hex.EncodeToString(c.data), len(c.refs), c.depth)
}
