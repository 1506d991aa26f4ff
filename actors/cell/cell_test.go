package cell_test

import (
	"encoding/base64"
	"encoding/hex"
	gbig "math/big"
	"strings"
	"testing"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"

	"github.com/jetton-project/jetton-actors/actors/cell"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func mustCell(t *testing.T, b *cell.Builder) *cell.Cell {
	c, err := b.EndCell()
	require.NoError(t, err)
	return c
}

func hashHex(c *cell.Cell) string {
	h := c.Hash()
	return hex.EncodeToString(h[:])
}

func TestHash(t *testing.T) {
	t.Run("empty cell", func(t *testing.T) {
		assert.Equal(t, "96a296d224f285c67bee93c30f8a309157f0daa35dc5b87e410b78630a09cfc7", hashHex(cell.Empty()))
		assert.Equal(t, uint16(0), cell.Empty().Depth())
	})

	t.Run("unaligned data", func(t *testing.T) {
		c := mustCell(t, cell.BeginCell().StoreUint(0xdeadbeef, 32).StoreUint(5, 3))
		assert.Equal(t, 35, c.BitLen())
		assert.Equal(t, "ec1def1dc4e6d1982ca42f1c04f5d61889700e4c409356d63f252dbe3db0ebcb", hashHex(c))
	})

	t.Run("tree with shared child", func(t *testing.T) {
		leaf := mustCell(t, cell.BeginCell().StoreUint(0xdeadbeef, 32).StoreUint(5, 3))
		mid := mustCell(t, cell.BeginCell().StoreUint(7, 4).StoreRef(leaf))
		root := mustCell(t, cell.BeginCell().StoreBit(true).StoreRef(leaf).StoreRef(mid))
		assert.Equal(t, uint16(2), root.Depth())
		assert.Equal(t, "ca39e6d4c19da644c0965cf3a3c204c7d025e9363e0a529d72d1e2f11ab4f53a", hashHex(root))
	})

	t.Run("hash changes with a single bit", func(t *testing.T) {
		a := mustCell(t, cell.BeginCell().StoreUint(1, 8))
		b := mustCell(t, cell.BeginCell().StoreUint(1, 9))
		assert.False(t, a.Equals(b))
	})
}

func TestBuilderBounds(t *testing.T) {
	t.Run("bit overflow", func(t *testing.T) {
		b := cell.BeginCell()
		for i := 0; i < cell.MaxBits; i++ {
			b.StoreBit(true)
		}
		require.NoError(t, b.Err())
		_, err := b.StoreBit(false).EndCell()
		assert.ErrorIs(t, err, cell.ErrCellOverflow)
	})

	t.Run("ref overflow", func(t *testing.T) {
		b := cell.BeginCell()
		for i := 0; i < cell.MaxRefs; i++ {
			b.StoreRef(cell.Empty())
		}
		_, err := b.StoreRef(cell.Empty()).EndCell()
		assert.ErrorIs(t, err, cell.ErrTooManyRefs)
	})

	t.Run("value wider than field", func(t *testing.T) {
		_, err := cell.BeginCell().StoreUint(256, 8).EndCell()
		assert.ErrorIs(t, err, cell.ErrValueOverflow)

		_, err = cell.BeginCell().StoreInt(128, 8).EndCell()
		assert.ErrorIs(t, err, cell.ErrValueOverflow)

		_, err = cell.BeginCell().StoreInt(-129, 8).EndCell()
		assert.ErrorIs(t, err, cell.ErrValueOverflow)
	})

	t.Run("coins wider than 120 bits", func(t *testing.T) {
		tooBig := big.NewFromGo(new(gbig.Int).Lsh(gbig.NewInt(1), 120))
		_, err := cell.BeginCell().StoreCoins(tooBig).EndCell()
		assert.ErrorIs(t, err, cell.ErrValueOverflow)

		_, err = cell.BeginCell().StoreCoins(big.NewInt(-1)).EndCell()
		assert.ErrorIs(t, err, cell.ErrValueOverflow)
	})
}

func TestSliceRoundTrip(t *testing.T) {
	maxCoins := big.NewFromGo(new(gbig.Int).Sub(new(gbig.Int).Lsh(gbig.NewInt(1), 120), gbig.NewInt(1)))
	c := mustCell(t, cell.BeginCell().
		StoreUint(0x0f8a7ea5, 32).
		StoreInt(-1, 8).
		StoreInt(-42, 17).
		StoreCoins(big.Zero()).
		StoreCoins(big.NewInt(888)).
		StoreCoins(maxCoins).
		StoreBool(true).
		StoreMaybeRef(nil).
		StoreMaybeRef(cell.Empty()))

	s := c.BeginParse()
	op, err := s.LoadUint(32)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0f8a7ea5), op)

	wc, err := s.LoadInt(8)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), wc)

	neg, err := s.LoadInt(17)
	require.NoError(t, err)
	assert.Equal(t, int64(-42), neg)

	zero, err := s.LoadCoins()
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	amount, err := s.LoadCoins()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(888), amount)

	max, err := s.LoadCoins()
	require.NoError(t, err)
	assert.Equal(t, maxCoins, max)

	flag, err := s.LoadBool()
	require.NoError(t, err)
	assert.True(t, flag)

	none, err := s.LoadMaybeRef()
	require.NoError(t, err)
	assert.Nil(t, none)

	some, err := s.LoadMaybeRef()
	require.NoError(t, err)
	assert.True(t, some.Equals(cell.Empty()))

	require.NoError(t, s.EndParse())
}

func TestSliceErrors(t *testing.T) {
	c := mustCell(t, cell.BeginCell().StoreUint(3, 4).StoreRef(cell.Empty()))

	_, err := c.BeginParse().LoadUint(5)
	assert.ErrorIs(t, err, cell.ErrNotEnoughBits)

	s := c.BeginParse()
	_, err = s.LoadUint(4)
	require.NoError(t, err)
	assert.ErrorIs(t, s.EndParse(), cell.ErrRefCountMismatch)

	_, err = s.LoadRef()
	require.NoError(t, err)
	_, err = s.LoadRef()
	assert.ErrorIs(t, err, cell.ErrNotEnoughRefs)

	assert.ErrorIs(t, c.BeginParse().EndParse(), cell.ErrTrailingData)

	// a length nibble promising more bytes than are present
	truncated := mustCell(t, cell.BeginCell().StoreUint(4, 4).StoreUint(1, 8))
	_, err = truncated.BeginParse().LoadCoins()
	assert.ErrorIs(t, err, cell.ErrNotEnoughBits)
}

func TestSnakeString(t *testing.T) {
	t.Run("fits in one cell", func(t *testing.T) {
		c := mustCell(t, cell.BeginCell().StoreUint(0, 8).StoreStringTail("Jetton"))
		s := c.BeginParse()
		_, err := s.LoadUint(8)
		require.NoError(t, err)
		str, err := s.LoadStringTail()
		require.NoError(t, err)
		assert.Equal(t, "Jetton", str)
		assert.Equal(t, 0, c.RefCount())
	})

	t.Run("spills into child cells", func(t *testing.T) {
		long := strings.Repeat("x", 300)
		c := mustCell(t, cell.BeginCell().StoreStringTail(long))
		assert.Equal(t, 127*8, c.BitLen())
		assert.Equal(t, 1, c.RefCount())
		assert.Equal(t, "784b5975a56bf9b11d61b7f4136dbf159abb5a706d4f7ce55f0abc64168184d7", hashHex(c))

		str, err := c.BeginParse().LoadStringTail()
		require.NoError(t, err)
		assert.Equal(t, long, str)
	})

	t.Run("rejects invalid utf-8", func(t *testing.T) {
		c := mustCell(t, cell.BeginCell().StoreBytes([]byte{0xff, 0xfe}))
		_, err := c.BeginParse().LoadStringTail()
		assert.Error(t, err)
	})
}

func toBOC(t *testing.T, c *cell.Cell, withCRC bool) []byte {
	data, err := cell.ToBOC(c, withCRC)
	require.NoError(t, err)
	return data
}

func TestBOC(t *testing.T) {
	t.Run("empty cell", func(t *testing.T) {
		assert.Equal(t, mustHex(t, "b5ee9c72010101010002000000"), toBOC(t, cell.Empty(), false))
		assert.Equal(t, "te6cckEBAQEAAgAAAEysuc0=", base64.StdEncoding.EncodeToString(toBOC(t, cell.Empty(), true)))
	})

	leaf := mustCell(t, cell.BeginCell().StoreUint(0xdeadbeef, 32).StoreUint(5, 3))
	mid := mustCell(t, cell.BeginCell().StoreUint(7, 4).StoreRef(leaf))
	root := mustCell(t, cell.BeginCell().StoreBit(true).StoreRef(leaf).StoreRef(mid))

	t.Run("shared subtree is stored once", func(t *testing.T) {
		assert.Equal(t, mustHex(t, "b5ee9c72010103010010000201c00201010178020009deadbeefb0"), toBOC(t, root, false))
		assert.Equal(t, mustHex(t, "b5ee9c72410103010010000201c00201010178020009deadbeefb0b3e298f0"), toBOC(t, root, true))
	})

	t.Run("round trip preserves hash", func(t *testing.T) {
		for _, crc := range []bool{false, true} {
			parsed, err := cell.FromBOC(toBOC(t, root, crc))
			require.NoError(t, err)
			assert.True(t, root.Equals(parsed))
			assert.Equal(t, root.Depth(), parsed.Depth())
			assert.Equal(t, root.Data(), parsed.Data())
		}
	})

	t.Run("rejects corrupted input", func(t *testing.T) {
		good := toBOC(t, root, true)

		badMagic := append([]byte{}, good...)
		badMagic[0] = 0
		_, err := cell.FromBOC(badMagic)
		assert.ErrorIs(t, err, cell.ErrInvalidBOC)

		badCRC := append([]byte{}, good...)
		badCRC[len(badCRC)-1] ^= 1
		_, err = cell.FromBOC(badCRC)
		assert.ErrorIs(t, err, cell.ErrInvalidBOC)

		_, err = cell.FromBOC(good[:len(good)-6])
		assert.ErrorIs(t, err, cell.ErrInvalidBOC)
	})
}

func key(b byte, last byte) [32]byte {
	var k [32]byte
	k[0] = b
	k[31] = last
	return k
}

func TestDict(t *testing.T) {
	value := func(v uint64) *cell.Cell {
		return mustCell(t, cell.BeginCell().StoreUint(v, 8))
	}

	t.Run("empty dictionary is a single clear bit", func(t *testing.T) {
		c := mustCell(t, cell.BeginCell().StoreDict(cell.NewDict()))
		assert.Equal(t, 1, c.BitLen())
		assert.Equal(t, 0, c.RefCount())

		parsed, err := c.BeginParse().LoadDict()
		require.NoError(t, err)
		assert.Equal(t, 0, parsed.Len())
	})

	t.Run("same label for a run of equal bits", func(t *testing.T) {
		d := cell.NewDict()
		require.NoError(t, d.Set([32]byte{}, value(9)))
		holder := mustCell(t, cell.BeginCell().StoreDict(d))
		root, err := holder.Ref(0)
		require.NoError(t, err)
		assert.Equal(t, 12, root.BitLen())
		assert.Equal(t, "bd97479336c3c7720af2886224c0a7bb5573122b4c7ea6164c7d338e571e0c98", hashHex(root))

		parsed, err := holder.BeginParse().LoadDict()
		require.NoError(t, err)
		v, ok := parsed.Get([32]byte{})
		require.True(t, ok)
		assert.True(t, v.Equals(value(9)))
	})

	t.Run("forks round trip", func(t *testing.T) {
		d := cell.NewDict()
		keys := [][32]byte{key(0, 1), key(0, 2), key(0xff, 0)}
		for i, k := range keys {
			require.NoError(t, d.Set(k, value(uint64(i+1))))
		}

		holder := mustCell(t, cell.BeginCell().StoreDict(d))
		require.Equal(t, 1, holder.RefCount())
		root, err := holder.Ref(0)
		require.NoError(t, err)
		assert.Equal(t, 2, root.RefCount())

		parsed, err := holder.BeginParse().LoadDict()
		require.NoError(t, err)
		assert.Equal(t, 3, parsed.Len())
		for i, k := range keys {
			v, ok := parsed.Get(k)
			require.True(t, ok)
			assert.True(t, v.Equals(value(uint64(i+1))))
		}
		_, ok := parsed.Get(key(0, 3))
		assert.False(t, ok)

		again := mustCell(t, cell.BeginCell().StoreDict(parsed))
		assert.True(t, holder.Equals(again))
	})

	t.Run("iteration is ordered by key", func(t *testing.T) {
		d := cell.NewDict()
		for _, b := range []byte{200, 3, 77} {
			require.NoError(t, d.Set(key(b, 0), value(uint64(b))))
		}
		var seen []byte
		require.NoError(t, d.ForEach(func(k [32]byte, _ *cell.Cell) error {
			seen = append(seen, k[0])
			return nil
		}))
		assert.Equal(t, []byte{3, 77, 200}, seen)
		assert.True(t, d.Delete(key(77, 0)))
		assert.False(t, d.Delete(key(77, 0)))
		assert.Equal(t, 2, d.Len())
	})

	t.Run("nil value", func(t *testing.T) {
		assert.Error(t, cell.NewDict().Set([32]byte{}, nil))
	})
}

func TestTLB(t *testing.T) {
	t.Run("coins match tongo grams", func(t *testing.T) {
		grams := tlb.Grams(888)
		viaTLB := mustCell(t, cell.BeginCell().StoreTLB(&grams))
		viaCoins := mustCell(t, cell.BeginCell().StoreCoins(big.NewInt(888)))
		assert.True(t, viaTLB.Equals(viaCoins))

		var back tlb.Grams
		require.NoError(t, viaCoins.BeginParse().LoadTLB(&back))
		assert.Equal(t, tlb.Grams(888), back)
	})

	t.Run("refs written by the encoder are sealed", func(t *testing.T) {
		payload := mustCell(t, cell.BeginCell().StoreUint(0xab, 8))
		raw, err := payload.BocCell()
		require.NoError(t, err)
		ref := tlb.Ref[boc.Cell]{Value: *raw}
		c := mustCell(t, cell.BeginCell().StoreUint(1, 1).StoreTLB(&ref))
		require.Equal(t, 1, c.RefCount())
		got, err := c.Ref(0)
		require.NoError(t, err)
		assert.True(t, payload.Equals(got))
	})

	t.Run("decoder errors are wrapped", func(t *testing.T) {
		var grams tlb.Grams
		c := mustCell(t, cell.BeginCell().StoreUint(3, 4))
		assert.Error(t, c.BeginParse().LoadTLB(&grams))
	})
}
