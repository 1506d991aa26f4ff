package account

import (
	rtt "github.com/filecoin-project/go-state-types/rt"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/builtin/messages"
	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/actors/runtime"
)

// Actor is an externally controlled account: it originates messages on behalf
// of its holder and receives the notifications addressed to owners.
type Actor struct{}

func (a Actor) Exports() map[abi.Op]interface{} {
	return map[abi.Op]interface{}{
		builtin.MethodsAccount.TransferNotification: a.TransferNotification,
		builtin.MethodsAccount.Excesses:             a.Excesses,
		builtin.MethodsAccount.TakeWalletAddress:    a.TakeWalletAddress,
		abi.OpBounced:                               a.OnBounce,
	}
}

func (a Actor) Code() cid.Cid {
	return builtin.AccountActorCodeID
}

func (a Actor) State() cell.MarshalUnmarshaler {
	return new(State)
}

var _ runtime.VMActor = Actor{}

type State struct {
	// Incoming transfer notifications seen so far.
	Notifications uint64
	Label         string
}

func (st *State) MarshalCell(b *cell.Builder) error {
	b.StoreUint(st.Notifications, 64).StoreStringTail(st.Label)
	return b.Err()
}

func (st *State) UnmarshalCell(s *cell.Slice) (err error) {
	if st.Notifications, err = s.LoadUint(64); err != nil {
		return xerrors.Errorf("notifications: %w", err)
	}
	if st.Label, err = s.LoadStringTail(); err != nil {
		return xerrors.Errorf("label: %w", err)
	}
	return nil
}

func (a Actor) TransferNotification(rt runtime.Runtime, params *messages.TransferNotification) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	var st State
	rt.State().Transaction(&st, func() {
		st.Notifications++
	})
	rt.Log(builtin.GetActorLogLevel(a, rtt.INFO), "%s received %v jettons from %v (query %d)", st.Label, params.Amount, params.Sender, params.QueryID)
	return nil
}

func (a Actor) Excesses(rt runtime.Runtime, params *messages.Excesses) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	rt.Log(builtin.GetActorLogLevel(a, rtt.DEBUG), "excesses of %v returned (query %d)", rt.Message().ValueReceived(), params.QueryID)
	return nil
}

func (a Actor) TakeWalletAddress(rt runtime.Runtime, params *messages.TakeWalletAddress) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	rt.Log(builtin.GetActorLogLevel(a, rtt.INFO), "wallet of %v is %v (query %d)", params.Owner, params.WalletAddress, params.QueryID)
	return nil
}

func (a Actor) OnBounce(rt runtime.Runtime, params *messages.Bounced) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	rt.Log(builtin.GetActorLogLevel(a, rtt.WARN), "%s bounced by %v (query %d)", params.Op, rt.Message().Caller(), params.QueryID)
	return nil
}
