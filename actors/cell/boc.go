package cell

import (
	"github.com/tonkeeper/tongo/boc"
	"golang.org/x/xerrors"
)

// ToBOC serializes the tree rooted at root as a single-root bag of cells without
// an index. Identical subtrees are stored once.
func ToBOC(root *Cell, withCRC bool) ([]byte, error) {
	raw, err := root.toBoc()
	if err != nil {
		return nil, err
	}
	data, err := raw.ToBocCustom(false, withCRC, false, 0)
	if err != nil {
		return nil, xerrors.Errorf("failed to serialize bag of cells: %w", err)
	}
	return data, nil
}

// FromBOC parses a bag of cells and returns its first root.
func FromBOC(data []byte) (*Cell, error) {
	roots, err := FromBOCMulti(data)
	if err != nil {
		return nil, err
	}
	return roots[0], nil
}

// FromBOCMulti parses a bag of cells and returns all of its roots.
func FromBOCMulti(data []byte) ([]*Cell, error) {
	raws, err := boc.DeserializeBoc(data)
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrInvalidBOC)
	}
	if len(raws) == 0 {
		return nil, xerrors.Errorf("no roots: %w", ErrInvalidBOC)
	}
	seen := make(map[*boc.Cell]*Cell)
	roots := make([]*Cell, len(raws))
	for i, raw := range raws {
		if roots[i], err = fromBoc(raw, seen); err != nil {
			return nil, err
		}
	}
	return roots, nil
}
