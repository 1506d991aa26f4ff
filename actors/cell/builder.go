package cell

import (
	gbig "math/big"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	"golang.org/x/xerrors"
)

// MaxCoinsBytes is the widest coin amount a VarUInteger16 can carry.
const MaxCoinsBytes = 15

// Builder accumulates bits and references for a new cell. Errors are sticky:
// after the first failed write every further write is a no-op and EndCell
// reports the original error.
type Builder struct {
	raw *boc.Cell
	// sealed cells behind the refs written by StoreRef
	known map[*boc.Cell]*Cell
	err   error
}

func BeginCell() *Builder {
	return &Builder{raw: boc.NewCell(), known: make(map[*boc.Cell]*Cell)}
}

func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) BitLen() int {
	return b.raw.BitSize()
}

func (b *Builder) BitsLeft() int {
	return MaxBits - b.raw.BitSize()
}

func (b *Builder) RefsLeft() int {
	return MaxRefs - b.raw.RefsSize()
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) reserve(n int) bool {
	if b.err != nil {
		return false
	}
	if n < 0 {
		b.fail(xerrors.Errorf("negative width %d: %w", n, ErrValueOverflow))
		return false
	}
	if b.BitLen()+n > MaxBits {
		b.fail(xerrors.Errorf("write %d bits at %d: %w", n, b.BitLen(), ErrCellOverflow))
		return false
	}
	return true
}

func (b *Builder) check(err error) *Builder {
	if err != nil {
		b.fail(xerrors.Errorf("write at bit %d: %w", b.BitLen(), err))
	}
	return b
}

func (b *Builder) StoreBit(bit bool) *Builder {
	if !b.reserve(1) {
		return b
	}
	return b.check(b.raw.WriteBit(bit))
}

func (b *Builder) StoreBool(v bool) *Builder {
	return b.StoreBit(v)
}

// StoreUint writes v as an unsigned integer of n bits, n <= 64.
func (b *Builder) StoreUint(v uint64, n int) *Builder {
	if n > 64 {
		return b.fail(xerrors.Errorf("uint%d: %w", n, ErrValueOverflow))
	}
	if n < 64 && v>>uint(n) != 0 {
		return b.fail(xerrors.Errorf("%d does not fit uint%d: %w", v, n, ErrValueOverflow))
	}
	if !b.reserve(n) || n == 0 {
		return b
	}
	return b.check(b.raw.WriteUint(v, n))
}

// StoreInt writes v in two's complement over n bits, n <= 64.
func (b *Builder) StoreInt(v int64, n int) *Builder {
	if n <= 0 || n > 64 {
		return b.fail(xerrors.Errorf("int%d: %w", n, ErrValueOverflow))
	}
	if n < 64 {
		limit := int64(1) << uint(n-1)
		if v < -limit || v >= limit {
			return b.fail(xerrors.Errorf("%d does not fit int%d: %w", v, n, ErrValueOverflow))
		}
	}
	if !b.reserve(n) {
		return b
	}
	return b.check(b.raw.WriteInt(v, n))
}

// StoreBigUint writes a non-negative arbitrary precision integer over n bits.
func (b *Builder) StoreBigUint(v *gbig.Int, n int) *Builder {
	if v.Sign() < 0 || v.BitLen() > n {
		return b.fail(xerrors.Errorf("%s does not fit uint%d: %w", v, n, ErrValueOverflow))
	}
	if !b.reserve(n) {
		return b
	}
	mask := new(gbig.Int).SetUint64(^uint64(0))
	for left := n; left > 0 && b.err == nil; {
		w := left
		if w > 64 {
			w = 64
		}
		left -= w
		chunk := new(gbig.Int).Rsh(v, uint(left))
		chunk.And(chunk, mask)
		b.check(b.raw.WriteUint(chunk.Uint64(), w))
	}
	return b
}

// StoreBits writes the first n bits of the packed, MSB first buffer p.
func (b *Builder) StoreBits(p []byte, n int) *Builder {
	if n > len(p)*8 {
		return b.fail(xerrors.Errorf("store %d bits from %d bytes: %w", n, len(p), ErrNotEnoughBits))
	}
	if !b.reserve(n) {
		return b
	}
	return b.check(writeBits(b.raw, p, n))
}

func (b *Builder) StoreBytes(p []byte) *Builder {
	return b.StoreBits(p, len(p)*8)
}

// StoreCoins writes a VarUInteger16: a four bit byte count followed by the
// big-endian magnitude.
func (b *Builder) StoreCoins(v big.Int) *Builder {
	if v.Int == nil {
		v = big.Zero()
	}
	if v.Sign() < 0 {
		return b.fail(xerrors.Errorf("negative coins %s: %w", v, ErrValueOverflow))
	}
	size := (v.BitLen() + 7) / 8
	if size > MaxCoinsBytes {
		return b.fail(xerrors.Errorf("coins %s: %w", v, ErrValueOverflow))
	}
	if !b.reserve(4 + size*8) {
		return b
	}
	coins := tlb.VarUInteger16(*v.Int)
	return b.StoreTLB(&coins)
}

// StoreTLB encodes v with tongo's TL-B encoder.
func (b *Builder) StoreTLB(v interface{}) *Builder {
	if b.err != nil {
		return b
	}
	if err := tlb.Marshal(b.raw, v); err != nil {
		return b.fail(xerrors.Errorf("store %T: %w", v, err))
	}
	return b
}

func (b *Builder) StoreRef(c *Cell) *Builder {
	if b.err != nil {
		return b
	}
	if c == nil {
		return b.fail(xerrors.New("store nil reference"))
	}
	if b.RefsLeft() <= 0 {
		return b.fail(ErrTooManyRefs)
	}
	raw, err := c.toBoc()
	if err != nil {
		return b.fail(err)
	}
	if err := b.raw.AddRef(raw); err != nil {
		return b.fail(xerrors.Errorf("add ref: %w", err))
	}
	b.known[raw] = c
	return b
}

// StoreMaybeRef writes a presence bit followed, when c is non-nil, by a reference.
func (b *Builder) StoreMaybeRef(c *Cell) *Builder {
	if c == nil {
		return b.StoreBit(false)
	}
	return b.StoreBit(true).StoreRef(c)
}

// StoreSlice appends the unread bits and references of s.
func (b *Builder) StoreSlice(s *Slice) *Builder {
	if b.err != nil {
		return b
	}
	s = s.Copy()
	n := s.RemainingBits()
	bits, err := s.LoadBits(n)
	if err != nil {
		return b.fail(err)
	}
	b.StoreBits(bits, n)
	for s.RemainingRefs() > 0 {
		r, err := s.LoadRef()
		if err != nil {
			return b.fail(err)
		}
		b.StoreRef(r)
	}
	return b
}

// StoreStringTail writes s as a snake string: as many whole bytes as fit in
// this cell, with the remainder continued in a chain of child cells.
func (b *Builder) StoreStringTail(s string) *Builder {
	return b.storeSnake([]byte(s))
}

func (b *Builder) storeSnake(p []byte) *Builder {
	if b.err != nil || len(p) == 0 {
		return b
	}
	avail := b.BitsLeft() / 8
	if len(p) <= avail {
		return b.StoreBytes(p)
	}
	tail := BeginCell().storeSnake(p[avail:])
	next, err := tail.EndCell()
	if err != nil {
		return b.fail(err)
	}
	return b.StoreBytes(p[:avail]).StoreRef(next)
}

// EndCell seals the builder into an immutable cell. References written by
// StoreTLB are sealed here.
func (b *Builder) EndCell() (*Cell, error) {
	if b.err != nil {
		return nil, b.err
	}
	data, bits, err := readBits(b.raw)
	if err != nil {
		return nil, err
	}
	var refs []*Cell
	for _, r := range b.raw.Refs() {
		c, ok := b.known[r]
		if !ok {
			if c, err = FromBocCell(r); err != nil {
				return nil, err
			}
		}
		refs = append(refs, c)
	}
	return seal(data, bits, refs)
}
