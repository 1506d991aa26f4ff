package cell

import (
	"bytes"
	"sort"

	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	"golang.org/x/xerrors"
)

// Dict is a HashmapE 256 ^Cell: 256-bit keys mapping to reference values.
type Dict struct {
	entries map[[32]byte]*Cell
}

type hashmap = tlb.HashmapE[tlb.Bits256, tlb.Ref[boc.Cell]]

func NewDict() *Dict {
	return &Dict{entries: make(map[[32]byte]*Cell)}
}

func (d *Dict) Len() int {
	return len(d.entries)
}

func (d *Dict) Set(k [32]byte, v *Cell) error {
	if v == nil {
		return xerrors.New("dictionary value must not be nil")
	}
	d.entries[k] = v
	return nil
}

func (d *Dict) Get(k [32]byte) (*Cell, bool) {
	v, ok := d.entries[k]
	return v, ok
}

func (d *Dict) Delete(k [32]byte) bool {
	_, ok := d.entries[k]
	delete(d.entries, k)
	return ok
}

func (d *Dict) sortedKeys() [][32]byte {
	keys := make([][32]byte, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	return keys
}

// ForEach visits entries in ascending key order.
func (d *Dict) ForEach(f func(k [32]byte, v *Cell) error) error {
	for _, k := range d.sortedKeys() {
		if err := f(k, d.entries[k]); err != nil {
			return err
		}
	}
	return nil
}

// StoreDict writes a HashmapE: a clear bit for an empty dictionary, otherwise
// a set bit and a reference to the root edge.
func (b *Builder) StoreDict(d *Dict) *Builder {
	if b.err != nil {
		return b
	}
	var keys []tlb.Bits256
	var values []tlb.Ref[boc.Cell]
	if d != nil {
		for _, k := range d.sortedKeys() {
			raw, err := d.entries[k].toBoc()
			if err != nil {
				return b.fail(err)
			}
			keys = append(keys, tlb.Bits256(k))
			values = append(values, tlb.Ref[boc.Cell]{Value: *raw})
		}
	}
	m := tlb.NewHashmapE(keys, values)
	return b.StoreTLB(&m)
}

// LoadDict reads a HashmapE 256 ^Cell.
func (s *Slice) LoadDict() (*Dict, error) {
	var m hashmap
	if err := s.LoadTLB(&m); err != nil {
		return nil, err
	}
	d := NewDict()
	for _, item := range m.Items() {
		raw := item.Value.Value
		v, err := FromBocCell(&raw)
		if err != nil {
			return nil, xerrors.Errorf("value %x: %w", item.Key[:], err)
		}
		d.entries[[32]byte(item.Key)] = v
	}
	return d, nil
}
