package wallet

import (
	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/exitcode"
	rtt "github.com/filecoin-project/go-state-types/rt"
	"github.com/ipfs/go-cid"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/builtin/messages"
	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/actors/runtime"
)

type Actor struct{}

func (a Actor) Exports() map[abi.Op]interface{} {
	return map[abi.Op]interface{}{
		builtin.MethodsWallet.Transfer:         a.Transfer,
		builtin.MethodsWallet.InternalTransfer: a.InternalTransfer,
		builtin.MethodsWallet.Burn:             a.Burn,
		abi.OpBounced:                          a.OnBounce,
	}
}

func (a Actor) Code() cid.Cid {
	return builtin.WalletActorCodeID
}

func (a Actor) State() cell.MarshalUnmarshaler {
	return new(State)
}

var _ runtime.VMActor = Actor{}

// Transfer moves jettons from this wallet to the wallet of the destination
// owner, deploying it if needed.
func (a Actor) Transfer(rt runtime.Runtime, params *messages.Transfer) *abi.EmptyValue {
	var st State
	rt.State().Readonly(&st)
	rt.ValidateImmediateCallerIs(builtin.ErrNotOwner, st.Owner)

	if params.Amount.GreaterThan(st.Balance) {
		rt.Abortf(builtin.ErrBalanceTooLow, "transfer of %v exceeds balance %v", params.Amount, st.Balance)
	}
	value := rt.Message().ValueReceived()
	if !value.GreaterThan(params.ForwardTonAmount) {
		rt.Abortf(builtin.ErrNotEnoughValue, "attached value %v does not cover forward amount %v", value, params.ForwardTonAmount)
	}
	if params.Destination.Workchain() != st.Minter.Workchain() {
		rt.Abortf(builtin.ErrWrongWorkchain, "destination %v is outside workchain %d", params.Destination, st.Minter.Workchain())
	}

	init, err := StateInit(params.Destination, st.Minter, st.WalletCode)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to build destination wallet")
	to, err := init.Address(st.Minter.Workchain())
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to derive destination wallet")

	rt.State().Transaction(&st, func() {
		err := st.debit(params.Amount)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to debit transfer")
	})

	body := builtin.MustMarshal(rt, &messages.InternalTransfer{
		QueryID:          params.QueryID,
		Amount:           params.Amount,
		From:             st.Owner,
		ResponseAddress:  params.ResponseDestination,
		ForwardTonAmount: params.ForwardTonAmount,
		ForwardPayload:   params.ForwardPayload,
	}, "internal transfer")
	rt.Send(runtime.OutboundMessage{
		To:     to,
		Value:  value,
		Bounce: true,
		Init:   init,
		Body:   body,
	})
	return nil
}

// InternalTransfer credits the wallet, then notifies the owner and returns
// unspent value to the response address.
func (a Actor) InternalTransfer(rt runtime.Runtime, params *messages.InternalTransfer) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()

	var st State
	rt.State().Transaction(&st, func() {
		st.credit(params.Amount)
	})
	rt.Log(builtin.GetActorLogLevel(a, rtt.DEBUG), "credited %v from %v, balance %v", params.Amount, params.From, st.Balance)

	remaining := rt.Message().ValueReceived()
	if params.ForwardTonAmount.GreaterThan(big.Zero()) {
		body := builtin.MustMarshal(rt, &messages.TransferNotification{
			QueryID:        params.QueryID,
			Amount:         params.Amount,
			Sender:         params.From,
			ForwardPayload: params.ForwardPayload,
		}, "transfer notification")
		rt.Send(runtime.OutboundMessage{
			To:    st.Owner,
			Value: params.ForwardTonAmount,
			Body:  body,
		})
		remaining = big.Sub(remaining, params.ForwardTonAmount)
	}

	if !params.ResponseAddress.Empty() && remaining.GreaterThan(big.Zero()) {
		body := builtin.MustMarshal(rt, &messages.Excesses{QueryID: params.QueryID}, "excesses")
		rt.Send(runtime.OutboundMessage{
			To:    params.ResponseAddress,
			Value: remaining,
			Body:  body,
		})
	}
	return nil
}

// Burn destroys jettons and reports the burn to the minter, which reduces
// the total supply.
func (a Actor) Burn(rt runtime.Runtime, params *messages.Burn) *abi.EmptyValue {
	var st State
	rt.State().Readonly(&st)
	rt.ValidateImmediateCallerIs(builtin.ErrNotOwner, st.Owner)

	rt.State().Transaction(&st, func() {
		err := st.debit(params.Amount)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to debit burn")
	})

	body := builtin.MustMarshal(rt, &messages.BurnNotification{
		QueryID:             params.QueryID,
		Amount:              params.Amount,
		Sender:              st.Owner,
		ResponseDestination: params.ResponseDestination,
	}, "burn notification")
	rt.Send(runtime.OutboundMessage{
		To:     st.Minter,
		Value:  rt.Message().ValueReceived(),
		Bounce: true,
		Body:   body,
	})
	return nil
}

// OnBounce restores the balance debited by an internal transfer or burn
// notification that could not be delivered.
func (a Actor) OnBounce(rt runtime.Runtime, params *messages.Bounced) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()

	switch params.Op {
	case builtin.MethodsWallet.InternalTransfer, builtin.MethodsMinter.BurnNotification:
	default:
		rt.Abortf(builtin.ErrNotEnoughValue, "unexpected bounced op %s", params.Op)
	}
	amount, err := params.Amount()
	builtin.RequireNoErr(rt, err, exitcode.ErrSerialization, "failed to read bounced amount")

	var st State
	rt.State().Transaction(&st, func() {
		st.credit(amount)
	})
	rt.Log(builtin.GetActorLogLevel(a, rtt.INFO), "restored %v after bounced %s, balance %v", amount, params.Op, st.Balance)
	return nil
}
