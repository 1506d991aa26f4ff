package cell

import "golang.org/x/xerrors"

var (
	// ErrCellOverflow is returned when a write would exceed MaxBits.
	ErrCellOverflow = xerrors.New("cell overflow")
	// ErrTooManyRefs is returned when a write would exceed MaxRefs.
	ErrTooManyRefs = xerrors.New("too many references")
	// ErrValueOverflow is returned when a value does not fit its declared bit width.
	ErrValueOverflow = xerrors.New("value exceeds declared bit width")
	// ErrNotEnoughBits is returned when a read runs past the end of the data.
	ErrNotEnoughBits = xerrors.New("not enough bits")
	// ErrNotEnoughRefs is returned when a read runs past the last reference.
	ErrNotEnoughRefs = xerrors.New("not enough references")
	// ErrTrailingData is returned when a strict parse leaves unread bits.
	ErrTrailingData = xerrors.New("trailing data")
	// ErrRefCountMismatch is returned when a strict parse leaves unread references.
	ErrRefCountMismatch = xerrors.New("reference count mismatch")
	// ErrInvalidBOC is returned for malformed bag-of-cells input.
	ErrInvalidBOC = xerrors.New("invalid bag of cells")
)
