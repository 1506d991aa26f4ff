package minter

import (
	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/exitcode"
	rtt "github.com/filecoin-project/go-state-types/rt"
	"github.com/ipfs/go-cid"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/builtin/messages"
	"github.com/jetton-project/jetton-actors/actors/builtin/wallet"
	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/actors/runtime"
)

type Actor struct{}

func (a Actor) Exports() map[abi.Op]interface{} {
	return map[abi.Op]interface{}{
		builtin.MethodsMinter.Mint:                 a.Mint,
		builtin.MethodsMinter.BurnNotification:     a.BurnNotification,
		builtin.MethodsMinter.ChangeAdmin:          a.ChangeAdmin,
		builtin.MethodsMinter.ChangeContent:        a.ChangeContent,
		builtin.MethodsMinter.ProvideWalletAddress: a.ProvideWalletAddress,
		abi.OpBounced:                              a.OnBounce,
	}
}

func (a Actor) Code() cid.Cid {
	return builtin.MinterActorCodeID
}

func (a Actor) State() cell.MarshalUnmarshaler {
	return new(State)
}

var _ runtime.VMActor = Actor{}

////////////////////////////////////////////////////////////////////////////////
// Actor methods
////////////////////////////////////////////////////////////////////////////////

// Mint credits the wallet of params.To with the amount carried by the
// master message, deploying the wallet if needed.
func (a Actor) Mint(rt runtime.Runtime, params *messages.Mint) *abi.EmptyValue {
	var st State
	rt.State().Readonly(&st)
	rt.ValidateImmediateCallerIs(builtin.ErrNotAdmin, st.Admin)

	if !st.Mintable {
		rt.Abortf(builtin.ErrMintingClosed, "minting is closed")
	}
	self := rt.Message().Receiver()
	if params.To.Workchain() != self.Workchain() {
		rt.Abortf(builtin.ErrWrongWorkchain, "recipient %v is outside workchain %d", params.To, self.Workchain())
	}

	init, err := wallet.StateInit(params.To, self, st.WalletCode)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to build recipient wallet")
	to, err := init.Address(self.Workchain())
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to derive recipient wallet")

	amount := params.MasterMsg.Amount
	rt.State().Transaction(&st, func() {
		err := st.mint(amount)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to mint")
	})
	rt.Log(builtin.GetActorLogLevel(a, rtt.INFO), "minted %v to %v, total supply %v", amount, params.To, st.TotalSupply)

	rt.Send(runtime.OutboundMessage{
		To:     to,
		Value:  params.TonAmount,
		Bounce: true,
		Init:   init,
		Body:   builtin.MustMarshal(rt, &params.MasterMsg, "master message"),
	})
	return nil
}

// BurnNotification reduces the supply by jettons a wallet destroyed, and
// returns the attached value to the response destination.
func (a Actor) BurnNotification(rt runtime.Runtime, params *messages.BurnNotification) *abi.EmptyValue {
	var st State
	rt.State().Readonly(&st)
	from, err := st.WalletAddress(rt.Message().Receiver(), params.Sender)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to derive wallet of %v", params.Sender)
	rt.ValidateImmediateCallerIs(builtin.ErrNotFromWallet, from)

	rt.State().Transaction(&st, func() {
		err := st.burn(params.Amount)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to burn")
	})

	value := rt.Message().ValueReceived()
	if !params.ResponseDestination.Empty() && value.GreaterThan(big.Zero()) {
		rt.Send(runtime.OutboundMessage{
			To:    params.ResponseDestination,
			Value: value,
			Body:  builtin.MustMarshal(rt, &messages.Excesses{QueryID: params.QueryID}, "excesses"),
		})
	}
	return nil
}

func (a Actor) ChangeAdmin(rt runtime.Runtime, params *messages.ChangeAdmin) *abi.EmptyValue {
	var st State
	rt.State().Readonly(&st)
	rt.ValidateImmediateCallerIs(builtin.ErrNotAdmin, st.Admin)

	rt.State().Transaction(&st, func() {
		st.Admin = params.NewAdmin
	})
	rt.Log(builtin.GetActorLogLevel(a, rtt.INFO), "admin changed to %v", params.NewAdmin)
	return nil
}

func (a Actor) ChangeContent(rt runtime.Runtime, params *messages.ChangeContent) *abi.EmptyValue {
	var st State
	rt.State().Readonly(&st)
	rt.ValidateImmediateCallerIs(builtin.ErrNotAdmin, st.Admin)

	rt.State().Transaction(&st, func() {
		st.Content = params.Content
	})
	return nil
}

// ProvideWalletAddress answers with the wallet address of an owner. Owners
// outside the minter's workchain have no wallet and get the absent address.
func (a Actor) ProvideWalletAddress(rt runtime.Runtime, params *messages.ProvideWalletAddress) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()

	value := rt.Message().ValueReceived()
	if !value.GreaterThan(big.Zero()) {
		rt.Abortf(builtin.ErrNoValueForReply, "wallet address request carries no value")
	}

	var st State
	rt.State().Readonly(&st)
	self := rt.Message().Receiver()

	reply := messages.TakeWalletAddress{QueryID: params.QueryID}
	if params.Owner.Workchain() == self.Workchain() {
		addr, err := st.WalletAddress(self, params.Owner)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to derive wallet of %v", params.Owner)
		reply.WalletAddress = addr
	}
	if params.IncludeAddress {
		reply.Owner = params.Owner
	}

	rt.Send(runtime.OutboundMessage{
		To:    rt.Message().Caller(),
		Value: value,
		Body:  builtin.MustMarshal(rt, &reply, "wallet address reply"),
	})
	return nil
}

// OnBounce reverts the supply increase of a mint whose delivery failed.
// A one-shot minter closed by that mint is reopened. Other bounces are
// accepted and ignored.
func (a Actor) OnBounce(rt runtime.Runtime, params *messages.Bounced) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()

	if params.Op != builtin.MethodsWallet.InternalTransfer {
		rt.Log(builtin.GetActorLogLevel(a, rtt.INFO), "ignoring bounced %s", params.Op)
		return nil
	}
	amount, err := params.Amount()
	builtin.RequireNoErr(rt, err, exitcode.ErrSerialization, "failed to read bounced amount")

	var st State
	rt.State().Transaction(&st, func() {
		err := st.burn(amount)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to revert mint")
		if st.CloseAfterMint {
			st.Mintable = true
		}
	})
	rt.Log(builtin.GetActorLogLevel(a, rtt.WARN), "mint of %v bounced, total supply %v", amount, st.TotalSupply)
	return nil
}
