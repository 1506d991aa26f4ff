package abi

import (
	"fmt"
	"io"

	cbg "github.com/whyrusleeping/cbor-gen"
)

// Addresses travel in CBOR records as a byte string of Bytes(); the absent
// address is the empty string.

func (a *Address) MarshalCBOR(w io.Writer) error {
	raw := a.Bytes()
	if err := cbg.WriteMajorTypeHeader(w, cbg.MajByteString, uint64(len(raw))); err != nil {
		return err
	}
	_, err := w.Write(raw)
	return err
}

func (a *Address) UnmarshalCBOR(r io.Reader) error {
	br := cbg.GetPeeker(r)
	maj, extra, err := cbg.CborReadHeader(br)
	if err != nil {
		return err
	}
	if maj != cbg.MajByteString {
		return fmt.Errorf("cbor type for address unmarshal was not byte string")
	}
	if extra > 33 {
		return fmt.Errorf("too many bytes to unmarshal into an address")
	}
	raw := make([]byte, extra)
	if _, err := io.ReadFull(br, raw); err != nil {
		return err
	}
	parsed, err := AddressFromBytes(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
