package cell

import "golang.org/x/xerrors"

// Marshaler is implemented by values with a cell layout.
type Marshaler interface {
	MarshalCell(b *Builder) error
}

type Unmarshaler interface {
	UnmarshalCell(s *Slice) error
}

type MarshalUnmarshaler interface {
	Marshaler
	Unmarshaler
}

// Marshal encodes m into a fresh cell.
func Marshal(m Marshaler) (*Cell, error) {
	b := BeginCell()
	if err := m.MarshalCell(b); err != nil {
		return nil, err
	}
	return b.EndCell()
}

// Unmarshal decodes c into u and requires every bit and reference to be
// consumed.
func Unmarshal(c *Cell, u Unmarshaler) error {
	if c == nil {
		return xerrors.Errorf("unmarshal nil cell: %w", ErrNotEnoughBits)
	}
	s := c.BeginParse()
	if err := u.UnmarshalCell(s); err != nil {
		return err
	}
	return s.EndParse()
}
