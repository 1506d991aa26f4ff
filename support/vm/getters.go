package vm

import (
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/builtin/minter"
	"github.com/jetton-project/jetton-actors/actors/builtin/wallet"
)

// GetMethod enumerates the read-only queries actors answer.
type GetMethod int

const (
	GetJettonData GetMethod = iota + 1
	GetWalletAddress
	GetWalletData
)

func (m GetMethod) String() string {
	switch m {
	case GetJettonData:
		return "get_jetton_data"
	case GetWalletAddress:
		return "get_wallet_address"
	case GetWalletData:
		return "get_wallet_data"
	default:
		return "<unknown get method>"
	}
}

// The code of the actor that answers m.
func (m GetMethod) code() cid.Cid {
	switch m {
	case GetJettonData, GetWalletAddress:
		return builtin.MinterActorCodeID
	case GetWalletData:
		return builtin.WalletActorCodeID
	default:
		return cid.Undef
	}
}

var ErrNoSuchGetMethod = xerrors.New("no such get method")

// Query carries the arguments of one get method and receives its result.
// The set of queries is closed.
type Query interface {
	Method() GetMethod
	run(vm *VM, self abi.Address) error
}

type JettonDataQuery struct {
	Result minter.JettonData
}

func (q *JettonDataQuery) Method() GetMethod { return GetJettonData }

func (q *JettonDataQuery) run(vm *VM, self abi.Address) error {
	var st minter.State
	if err := vm.GetState(self, &st); err != nil {
		return err
	}
	q.Result = st.JettonData()
	return nil
}

type WalletAddressQuery struct {
	Owner  abi.Address
	Result abi.Address
}

func (q *WalletAddressQuery) Method() GetMethod { return GetWalletAddress }

func (q *WalletAddressQuery) run(vm *VM, self abi.Address) error {
	var st minter.State
	if err := vm.GetState(self, &st); err != nil {
		return err
	}
	addr, err := st.WalletAddress(self, q.Owner)
	if err != nil {
		return err
	}
	q.Result = addr
	return nil
}

type WalletDataQuery struct {
	Result wallet.WalletData
}

func (q *WalletDataQuery) Method() GetMethod { return GetWalletData }

func (q *WalletDataQuery) run(vm *VM, self abi.Address) error {
	var st wallet.State
	if err := vm.GetState(self, &st); err != nil {
		return err
	}
	q.Result = st.WalletData()
	return nil
}

// Query runs a get method against the committed storage of addr.
func (vm *VM) Query(addr abi.Address, q Query) error {
	act, found, err := vm.GetActor(addr)
	if err != nil {
		return err
	}
	if !found || !act.Initialized() {
		return xerrors.Errorf("%v: %w", addr, ErrActorNotFound)
	}
	if !act.Code.Equals(q.Method().code()) {
		return xerrors.Errorf("%s on %s: %w", q.Method(), builtin.ActorNameByCode(act.Code), ErrNoSuchGetMethod)
	}
	return q.run(vm, addr)
}

// JettonData runs get_jetton_data on a minter.
func (vm *VM) JettonData(minterAddr abi.Address) (minter.JettonData, error) {
	q := JettonDataQuery{}
	err := vm.Query(minterAddr, &q)
	return q.Result, err
}

// WalletAddress runs get_wallet_address on a minter.
func (vm *VM) WalletAddress(minterAddr, owner abi.Address) (abi.Address, error) {
	q := WalletAddressQuery{Owner: owner}
	err := vm.Query(minterAddr, &q)
	return q.Result, err
}

// WalletData runs get_wallet_data on a wallet.
func (vm *VM) WalletData(walletAddr abi.Address) (wallet.WalletData, error) {
	q := WalletDataQuery{}
	err := vm.Query(walletAddr, &q)
	return q.Result, err
}
