package abi

import (
	"strings"

	"github.com/multiformats/go-multibase"
	"github.com/tonkeeper/tongo/ton"
	"golang.org/x/xerrors"
)

const (
	tagBounceable    = 0x11
	tagNonBounceable = 0x51
	tagTestOnly      = 0x80
)

// FriendlyAddress is an address with the flags carried by its user-friendly form.
type FriendlyAddress struct {
	Address
	Bounceable bool
	TestOnly   bool
}

// Friendly renders the 48 character url-safe base64 form: a flags byte, the
// workchain, the hash and a CRC16 checksum.
func (a Address) Friendly(bounceable, testOnly bool) string {
	if !a.defined {
		return ""
	}
	return a.accountID().ToHuman(bounceable, testOnly)
}

// ParseFriendly decodes the user-friendly form in either base64 alphabet.
func ParseFriendly(s string) (FriendlyAddress, error) {
	if len(s) != 48 {
		return FriendlyAddress{}, xerrors.Errorf("friendly address %q has length %d", s, len(s))
	}
	urlSafe := strings.NewReplacer("+", "-", "/", "_").Replace(s)
	id, err := ton.ParseAccountID(urlSafe)
	if err != nil {
		return FriendlyAddress{}, xerrors.Errorf("friendly address %q: %w", s, err)
	}
	_, raw, err := multibase.Decode(string(rune(multibase.Base64url)) + urlSafe)
	if err != nil {
		return FriendlyAddress{}, xerrors.Errorf("decode friendly address %q: %w", s, err)
	}
	tag := raw[0]
	fa := FriendlyAddress{TestOnly: tag&tagTestOnly != 0}
	switch tag &^ tagTestOnly {
	case tagBounceable:
		fa.Bounceable = true
	case tagNonBounceable:
	default:
		return FriendlyAddress{}, xerrors.Errorf("friendly address %q: unknown tag %#x", s, tag)
	}
	if fa.Address, err = fromAccountID(id); err != nil {
		return FriendlyAddress{}, err
	}
	return fa, nil
}
