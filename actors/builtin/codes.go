package builtin

import (
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/cell"
)

// The built-in actor code IDs
var AccountActorCodeID cid.Cid
var MinterActorCodeID cid.Cid
var WalletActorCodeID cid.Cid

// UninitActorCodeID marks an account that holds value but was never deployed.
// No actor implements it.
var UninitActorCodeID cid.Cid

// Code cells carrying the code IDs. A code cell is what a StateInit holds and
// what contract addresses are derived from.
var AccountCode *cell.Cell
var MinterCode *cell.Cell
var WalletCode *cell.Cell

func init() {
	builder := cid.V1Builder{Codec: cid.Raw, MhType: mh.IDENTITY}
	makeBuiltin := func(s string) (cid.Cid, *cell.Cell) {
		c, err := builder.Sum([]byte(s))
		if err != nil {
			panic(err)
		}
		code, err := CodeCell(c)
		if err != nil {
			panic(err)
		}
		return c, code
	}

	AccountActorCodeID, AccountCode = makeBuiltin("jetton/1/account")
	MinterActorCodeID, MinterCode = makeBuiltin("jetton/1/minter")
	WalletActorCodeID, WalletCode = makeBuiltin("jetton/1/wallet")
	UninitActorCodeID, _ = makeBuiltin("jetton/1/uninit")
}

// CodeCell wraps a code ID in a cell.
func CodeCell(code cid.Cid) (*cell.Cell, error) {
	return cell.BeginCell().StoreBytes(code.Bytes()).EndCell()
}

// CodeIDFromCell recovers the code ID carried by a code cell.
func CodeIDFromCell(code *cell.Cell) (cid.Cid, error) {
	if code == nil || code.BitLen()%8 != 0 || code.RefCount() != 0 {
		return cid.Undef, xerrors.Errorf("malformed code cell %v", code)
	}
	c, err := cid.Cast(code.Data())
	if err != nil {
		return cid.Undef, xerrors.Errorf("failed to decode code id: %w", err)
	}
	return c, nil
}

// ActorNameByCode returns the (string) name of the actor given a cid code.
func ActorNameByCode(code cid.Cid) string {
	if !code.Defined() {
		return "<undefined>"
	}

	names := map[cid.Cid]string{
		AccountActorCodeID: "jetton/1/account",
		MinterActorCodeID:  "jetton/1/minter",
		WalletActorCodeID:  "jetton/1/wallet",
		UninitActorCodeID:  "jetton/1/uninit",
	}
	name, ok := names[code]
	if !ok {
		return "<unknown>"
	}
	return name
}
