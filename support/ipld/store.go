package ipld

import (
	"context"
	"sync"

	block "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	ipldcbor "github.com/ipfs/go-ipld-cbor"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/util/adt"
)

// ErrNotFound is returned when a block is not held by the store.
var ErrNotFound = xerrors.New("block not found")

// Creates a new, empty IPLD store in memory.
// This store is appropriate for most kinds of testing.
func NewADTStore(ctx context.Context) adt.Store {
	return adt.WrapBlockStore(ctx, NewBlockStoreInMemory())
}

// BlockStoreInMemory is a block store safe for concurrent use.
type BlockStoreInMemory struct {
	mu   sync.RWMutex
	data map[cid.Cid]block.Block
}

var _ ipldcbor.IpldBlockstore = (*BlockStoreInMemory)(nil)

func NewBlockStoreInMemory() *BlockStoreInMemory {
	return &BlockStoreInMemory{data: make(map[cid.Cid]block.Block)}
}

func (mb *BlockStoreInMemory) Get(c cid.Cid) (block.Block, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	d, ok := mb.data[c]
	if !ok {
		return nil, xerrors.Errorf("%v: %w", c, ErrNotFound)
	}
	return d, nil
}

func (mb *BlockStoreInMemory) Put(b block.Block) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.data[b.Cid()] = b
	return nil
}

// Len is the number of distinct blocks held.
func (mb *BlockStoreInMemory) Len() int {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	return len(mb.data)
}

// MetricsBlockStore counts the traffic through an underlying block store.
type MetricsBlockStore struct {
	bs         ipldcbor.IpldBlockstore
	mu         sync.Mutex
	Writes     uint64
	WriteBytes uint64
	Reads      uint64
	ReadBytes  uint64
}

var _ ipldcbor.IpldBlockstore = (*MetricsBlockStore)(nil)

func NewMetricsBlockStore(underlying ipldcbor.IpldBlockstore) *MetricsBlockStore {
	return &MetricsBlockStore{bs: underlying}
}

func (ms *MetricsBlockStore) Get(c cid.Cid) (block.Block, error) {
	blk, err := ms.bs.Get(c)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	ms.Reads++
	ms.ReadBytes += uint64(len(blk.RawData()))
	ms.mu.Unlock()
	return blk, nil
}

func (ms *MetricsBlockStore) Put(b block.Block) error {
	ms.mu.Lock()
	ms.Writes++
	ms.WriteBytes += uint64(len(b.RawData()))
	ms.mu.Unlock()
	return ms.bs.Put(b)
}

// Stats returns a consistent snapshot of the counters.
func (ms *MetricsBlockStore) Stats() (reads, readBytes, writes, writeBytes uint64) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.Reads, ms.ReadBytes, ms.Writes, ms.WriteBytes
}
