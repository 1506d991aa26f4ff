package ipld_test

import (
	"testing"

	block "github.com/ipfs/go-block-format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/support/ipld"
)

func TestBlockStoreInMemory(t *testing.T) {
	bs := ipld.NewBlockStoreInMemory()
	blk := block.NewBlock([]byte("jetton"))

	_, err := bs.Get(blk.Cid())
	assert.True(t, xerrors.Is(err, ipld.ErrNotFound))

	require.NoError(t, bs.Put(blk))
	got, err := bs.Get(blk.Cid())
	require.NoError(t, err)
	assert.Equal(t, blk.RawData(), got.RawData())
	assert.Equal(t, 1, bs.Len())
}

func TestMetricsBlockStore(t *testing.T) {
	ms := ipld.NewMetricsBlockStore(ipld.NewBlockStoreInMemory())
	blk := block.NewBlock([]byte("minter"))

	require.NoError(t, ms.Put(blk))
	_, err := ms.Get(blk.Cid())
	require.NoError(t, err)
	_, err = ms.Get(block.NewBlock([]byte("missing")).Cid())
	require.Error(t, err)

	reads, readBytes, writes, writeBytes := ms.Stats()
	assert.Equal(t, uint64(1), reads)
	assert.Equal(t, uint64(6), readBytes)
	assert.Equal(t, uint64(1), writes)
	assert.Equal(t, uint64(6), writeBytes)
}
