// Package content encodes jetton metadata as an on-chain content blob: a
// zero tag byte followed by a dictionary from SHA-256 of a field name to a
// text cell.
package content

import (
	"strconv"
	"unicode/utf8"

	"github.com/minio/sha256-simd"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/cell"
)

// OnChainTag leads an on-chain content blob.
const OnChainTag = 0x00

// Encoding selects how decimals are written.
type Encoding int

const (
	// EncodingStandard writes decimals as decimal text under "decimals".
	EncodingStandard Encoding = iota
	// EncodingLegacy reproduces the reference deployment byte for byte: a
	// two zero byte cell under the key "dicmals", whatever the decimals are.
	EncodingLegacy
)

func (e Encoding) String() string {
	switch e {
	case EncodingStandard:
		return "standard"
	case EncodingLegacy:
		return "legacy"
	default:
		return "Encoding(" + strconv.Itoa(int(e)) + ")"
	}
}

// ParseEncoding accepts the names produced by String.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "standard":
		return EncodingStandard, nil
	case "legacy":
		return EncodingLegacy, nil
	}
	return 0, xerrors.Errorf("unknown content encoding %q", s)
}

const (
	KeyName        = "name"
	KeyDescription = "description"
	KeySymbol      = "symbol"
	KeyDecimals    = "decimals"
	KeyImage       = "image"
	// Misspelled key used by the legacy encoding.
	KeyLegacyDecimals = "dicmals"
)

// ErrInvalidField is returned for a text field that is not valid UTF-8.
var ErrInvalidField = xerrors.New("invalid content field")

// Fields is the jetton metadata.
type Fields struct {
	Name        string
	Description string
	Symbol      string
	Decimals    uint8
	Image       string
}

// Key returns the dictionary key of a field name.
func Key(name string) [32]byte {
	return sha256.Sum256([]byte(name))
}

// TextCell is a zero tag byte followed by s as a snake string.
func TextCell(s string) (*cell.Cell, error) {
	return cell.BeginCell().StoreUint(0, 8).StoreStringTail(s).EndCell()
}

func legacyDecimalsCell() (*cell.Cell, error) {
	return cell.BeginCell().StoreUint(0, 8).StoreUint(0, 8).EndCell()
}

// Build encodes f. The result depends only on f and enc.
func Build(f Fields, enc Encoding) (*cell.Cell, error) {
	texts := []struct{ key, value string }{
		{KeyName, f.Name},
		{KeyDescription, f.Description},
		{KeySymbol, f.Symbol},
		{KeyImage, f.Image},
	}

	d := cell.NewDict()
	for _, tv := range texts {
		if !utf8.ValidString(tv.value) {
			return nil, xerrors.Errorf("%s: %w", tv.key, ErrInvalidField)
		}
		c, err := TextCell(tv.value)
		if err != nil {
			return nil, xerrors.Errorf("failed to encode %s: %w", tv.key, err)
		}
		if err := d.Set(Key(tv.key), c); err != nil {
			return nil, err
		}
	}

	switch enc {
	case EncodingStandard:
		c, err := TextCell(strconv.Itoa(int(f.Decimals)))
		if err != nil {
			return nil, xerrors.Errorf("failed to encode decimals: %w", err)
		}
		if err := d.Set(Key(KeyDecimals), c); err != nil {
			return nil, err
		}
	case EncodingLegacy:
		c, err := legacyDecimalsCell()
		if err != nil {
			return nil, err
		}
		if err := d.Set(Key(KeyLegacyDecimals), c); err != nil {
			return nil, err
		}
	default:
		return nil, xerrors.Errorf("unknown encoding %d", enc)
	}

	return cell.BeginCell().StoreUint(OnChainTag, 8).StoreDict(d).EndCell()
}

// Parse decodes a content blob written by Build in either encoding.
func Parse(c *cell.Cell) (Fields, Encoding, error) {
	s := c.BeginParse()
	tag, err := s.LoadUint(8)
	if err != nil {
		return Fields{}, 0, xerrors.Errorf("content tag: %w", err)
	}
	if tag != OnChainTag {
		return Fields{}, 0, xerrors.Errorf("content tag %#x is not on-chain", tag)
	}
	d, err := s.LoadDict()
	if err != nil {
		return Fields{}, 0, xerrors.Errorf("content dictionary: %w", err)
	}
	if err := s.EndParse(); err != nil {
		return Fields{}, 0, err
	}

	var f Fields
	for _, field := range []struct {
		key string
		dst *string
	}{
		{KeyName, &f.Name},
		{KeyDescription, &f.Description},
		{KeySymbol, &f.Symbol},
		{KeyImage, &f.Image},
	} {
		v, ok := d.Get(Key(field.key))
		if !ok {
			continue
		}
		if *field.dst, err = readText(v); err != nil {
			return Fields{}, 0, xerrors.Errorf("%s: %w", field.key, err)
		}
	}

	if v, ok := d.Get(Key(KeyDecimals)); ok {
		text, err := readText(v)
		if err != nil {
			return Fields{}, 0, xerrors.Errorf("%s: %w", KeyDecimals, err)
		}
		n, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return Fields{}, 0, xerrors.Errorf("decimals %q: %w", text, ErrInvalidField)
		}
		f.Decimals = uint8(n)
		return f, EncodingStandard, nil
	}
	if v, ok := d.Get(Key(KeyLegacyDecimals)); ok {
		vs := v.BeginParse()
		if _, err := vs.LoadUint(8); err != nil {
			return Fields{}, 0, xerrors.Errorf("%s: %w", KeyLegacyDecimals, err)
		}
		n, err := vs.LoadUint(8)
		if err != nil {
			return Fields{}, 0, xerrors.Errorf("%s: %w", KeyLegacyDecimals, err)
		}
		f.Decimals = uint8(n)
		return f, EncodingLegacy, nil
	}
	return f, EncodingStandard, nil
}

func readText(c *cell.Cell) (string, error) {
	s := c.BeginParse()
	tag, err := s.LoadUint(8)
	if err != nil {
		return "", err
	}
	if tag != 0 {
		return "", xerrors.Errorf("text tag %#x: %w", tag, ErrInvalidField)
	}
	text, err := s.LoadStringTail()
	if err != nil {
		return "", xerrors.Errorf("%v: %w", err, ErrInvalidField)
	}
	return text, nil
}
