package testing

import (
	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
	mh "github.com/multiformats/go-multihash"

	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

// NewCidForTestGetter returns a closure that returns a Cid unique to that invocation.
// The Cid is unique wrt the closure returned, not globally. You can use this function
// in tests.
func NewCidForTestGetter() func() cid.Cid {
	i := 31337
	return func() cid.Cid {
		obj, err := cbor.WrapObject([]int{i}, uint64(mh.BLAKE2B_MIN+31), -1)
		if err != nil {
			panic(err)
		}
		i++
		return obj.Cid()
	}
}

// NewCodeForTestGetter returns a closure that returns a code cell no builtin
// actor runs, unique to that invocation.
func NewCodeForTestGetter() func() *cell.Cell {
	next := NewCidForTestGetter()
	return func() *cell.Cell {
		code, err := builtin.CodeCell(next())
		if err != nil {
			panic(err)
		}
		return code
	}
}
