package abi

import (
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"github.com/jetton-project/jetton-actors/actors/cell"
)

// CellCidBuilder addresses serialized bags of cells in a block store.
var CellCidBuilder cid.Builder = cid.V1Builder{
	Codec:    cid.Raw,
	MhType:   mh.SHA2_256,
	MhLength: -1,
}

// CellCid returns the block identifier of the serialized tree rooted at c.
func CellCid(c *cell.Cell) (cid.Cid, []byte, error) {
	data, err := cell.ToBOC(c, true)
	if err != nil {
		return cid.Undef, nil, err
	}
	id, err := CellCidBuilder.Sum(data)
	if err != nil {
		return cid.Undef, nil, err
	}
	return id, data, nil
}
