package wallet_test

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/exitcode"
	rtt "github.com/filecoin-project/go-state-types/rt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/builtin/messages"
	"github.com/jetton-project/jetton-actors/actors/builtin/wallet"
	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/actors/runtime"
	"github.com/jetton-project/jetton-actors/support/mock"
	tutil "github.com/jetton-project/jetton-actors/support/testing"
)

type walletHarness struct {
	wallet.Actor
	t *testing.T

	owner    abi.Address
	minter   abi.Address
	receiver abi.Address
}

func newHarness(t *testing.T) *walletHarness {
	owner := tutil.NewAddr(t, "owner")
	minter := tutil.NewAddr(t, "minter")
	receiver, err := wallet.Address(owner, minter, builtin.WalletCode)
	require.NoError(t, err)
	return &walletHarness{t: t, owner: owner, minter: minter, receiver: receiver}
}

func (h *walletHarness) runtime(balance int64) *mock.Runtime {
	st := wallet.ConstructState(h.owner, h.minter, builtin.WalletCode)
	st.Balance = abi.NewTokenAmount(balance)
	return mock.NewBuilder(context.Background(), h.receiver).
		WithCaller(h.owner).
		WithState(st).
		Build(h.t)
}

func (h *walletHarness) state(rt *mock.Runtime) *wallet.State {
	var st wallet.State
	rt.GetState(&st)
	return &st
}

func (h *walletHarness) walletOf(owner abi.Address) (abi.Address, *abi.StateInit) {
	init, err := wallet.StateInit(owner, h.minter, builtin.WalletCode)
	require.NoError(h.t, err)
	addr, err := init.Address(h.minter.Workchain())
	require.NoError(h.t, err)
	return addr, init
}

func (h *walletHarness) body(m cell.Marshaler) *cell.Cell {
	c, err := cell.Marshal(m)
	require.NoError(h.t, err)
	return c
}

func (h *walletHarness) checkState(rt *mock.Runtime) {
	_, msgs := wallet.CheckStateInvariants(h.state(rt), h.receiver)
	assert.True(h.t, msgs.IsEmpty(), "%v", msgs.Messages())
}

func assertAmount(t *testing.T, expected int64, actual abi.TokenAmount) {
	assert.Equal(t, abi.NewTokenAmount(expected).String(), actual.String())
}

func TestTransfer(t *testing.T) {
	h := newHarness(t)
	destination := tutil.NewAddr(t, "destination")
	response := tutil.NewAddr(t, "response")

	transfer := func(amount, forward int64) *messages.Transfer {
		return &messages.Transfer{
			QueryID:             7,
			Amount:              abi.NewTokenAmount(amount),
			Destination:         destination,
			ResponseDestination: response,
			ForwardTonAmount:    abi.NewTokenAmount(forward),
		}
	}

	t.Run("debits and sends internal transfer to the destination wallet", func(t *testing.T) {
		rt := h.runtime(100500)
		rt.SetReceived(abi.NewTokenAmount(100))

		to, init := h.walletOf(destination)
		rt.ExpectValidateCallerAddr(h.owner)
		rt.ExpectSend(runtime.OutboundMessage{
			To:     to,
			Value:  abi.NewTokenAmount(100),
			Bounce: true,
			Init:   init,
			Body: h.body(&messages.InternalTransfer{
				QueryID:          7,
				Amount:           abi.NewTokenAmount(100),
				From:             h.owner,
				ResponseAddress:  response,
				ForwardTonAmount: abi.NewTokenAmount(5),
			}),
		})
		rt.Call(h.Transfer, transfer(100, 5))
		rt.Verify()

		assertAmount(t, 100400, h.state(rt).Balance)
		h.checkState(rt)
	})

	t.Run("whole balance can be moved", func(t *testing.T) {
		rt := h.runtime(100)
		rt.SetReceived(abi.NewTokenAmount(1))

		to, init := h.walletOf(destination)
		rt.ExpectValidateCallerAddr(h.owner)
		rt.ExpectSend(runtime.OutboundMessage{
			To:     to,
			Value:  abi.NewTokenAmount(1),
			Bounce: true,
			Init:   init,
			Body: h.body(&messages.InternalTransfer{
				QueryID:          7,
				Amount:           abi.NewTokenAmount(100),
				From:             h.owner,
				ResponseAddress:  response,
				ForwardTonAmount: big.Zero(),
			}),
		})
		rt.Call(h.Transfer, transfer(100, 0))
		rt.Verify()

		assertAmount(t, 0, h.state(rt).Balance)
	})

	t.Run("amount above balance fails 706", func(t *testing.T) {
		rt := h.runtime(100400)
		rt.SetReceived(abi.NewTokenAmount(100))
		before := rt.StateCell()

		rt.ExpectValidateCallerAddr(h.owner)
		rt.ExpectAbort(builtin.ErrBalanceTooLow, func() {
			rt.Call(h.Transfer, transfer(100600, 5))
		})
		rt.Verify()
		assert.True(t, before.Equals(rt.StateCell()))
	})

	t.Run("non-owner fails 705", func(t *testing.T) {
		rt := h.runtime(100500)
		rt.SetCaller(tutil.NewAddr(t, "mallory"))
		rt.SetReceived(abi.NewTokenAmount(100))

		rt.ExpectValidateCallerAddr(h.owner)
		rt.ExpectAbort(builtin.ErrNotOwner, func() {
			rt.Call(h.Transfer, transfer(100, 5))
		})
		rt.Verify()
		assertAmount(t, 100500, h.state(rt).Balance)
	})

	t.Run("value not above forward amount fails 709", func(t *testing.T) {
		rt := h.runtime(100500)
		rt.SetReceived(abi.NewTokenAmount(5))

		rt.ExpectValidateCallerAddr(h.owner)
		rt.ExpectAbort(builtin.ErrNotEnoughValue, func() {
			rt.Call(h.Transfer, transfer(100, 5))
		})
		rt.Verify()
		assertAmount(t, 100500, h.state(rt).Balance)
	})

	t.Run("destination in another workchain fails 333", func(t *testing.T) {
		rt := h.runtime(100500)
		rt.SetReceived(abi.NewTokenAmount(100))

		params := transfer(100, 5)
		params.Destination = tutil.NewAddrInWorkchain(t, -1, "destination")
		rt.ExpectValidateCallerAddr(h.owner)
		rt.ExpectAbort(builtin.ErrWrongWorkchain, func() {
			rt.Call(h.Transfer, params)
		})
		rt.Verify()
	})
}

func TestInternalTransfer(t *testing.T) {
	h := newHarness(t)
	from := tutil.NewAddr(t, "sender")
	response := tutil.NewAddr(t, "response")
	payload, err := cell.BeginCell().StoreUint(0, 32).StoreBytes([]byte("hi")).EndCell()
	require.NoError(t, err)

	t.Run("credits, notifies the owner and returns excesses", func(t *testing.T) {
		rt := h.runtime(10)
		rt.SetCaller(tutil.NewAddr(t, "peer wallet"))
		rt.SetReceived(abi.NewTokenAmount(100))

		rt.ExpectValidateCallerAny()
		rt.ExpectSend(runtime.OutboundMessage{
			To:    h.owner,
			Value: abi.NewTokenAmount(30),
			Body: h.body(&messages.TransferNotification{
				QueryID:        3,
				Amount:         abi.NewTokenAmount(888),
				Sender:         from,
				ForwardPayload: payload,
			}),
		})
		rt.ExpectSend(runtime.OutboundMessage{
			To:    response,
			Value: abi.NewTokenAmount(70),
			Body:  h.body(&messages.Excesses{QueryID: 3}),
		})
		rt.Call(h.InternalTransfer, &messages.InternalTransfer{
			QueryID:          3,
			Amount:           abi.NewTokenAmount(888),
			From:             from,
			ResponseAddress:  response,
			ForwardTonAmount: abi.NewTokenAmount(30),
			ForwardPayload:   payload,
		})
		rt.Verify()

		assertAmount(t, 898, h.state(rt).Balance)
		h.checkState(rt)
	})

	t.Run("no notification without forward amount and no excesses without response", func(t *testing.T) {
		rt := h.runtime(0)
		rt.SetCaller(h.minter)
		rt.SetReceived(abi.NewTokenAmount(100))

		rt.ExpectValidateCallerAny()
		rt.Call(h.InternalTransfer, &messages.InternalTransfer{
			QueryID:          1,
			Amount:           abi.NewTokenAmount(888),
			ForwardTonAmount: big.Zero(),
		})
		rt.Verify()

		assertAmount(t, 888, h.state(rt).Balance)
	})

	t.Run("forward amount beyond balance aborts", func(t *testing.T) {
		rt := h.runtime(0)
		rt.SetCaller(h.minter)
		rt.SetReceived(abi.NewTokenAmount(10))

		rt.ExpectValidateCallerAny()
		rt.ExpectSend(runtime.OutboundMessage{
			To:    h.owner,
			Value: abi.NewTokenAmount(50),
			Body: h.body(&messages.TransferNotification{
				QueryID: 1,
				Amount:  abi.NewTokenAmount(1),
				Sender:  from,
			}),
		})
		rt.ExpectAbort(exitcode.SysErrInsufficientFunds, func() {
			rt.Call(h.InternalTransfer, &messages.InternalTransfer{
				QueryID:          1,
				Amount:           abi.NewTokenAmount(1),
				From:             from,
				ForwardTonAmount: abi.NewTokenAmount(50),
			})
		})
		assertAmount(t, 0, h.state(rt).Balance)
	})
}

func TestBurn(t *testing.T) {
	h := newHarness(t)
	response := tutil.NewAddr(t, "response")

	t.Run("debits and notifies the minter", func(t *testing.T) {
		rt := h.runtime(100500)
		rt.SetReceived(abi.NewTokenAmount(20))

		rt.ExpectValidateCallerAddr(h.owner)
		rt.ExpectSend(runtime.OutboundMessage{
			To:     h.minter,
			Value:  abi.NewTokenAmount(20),
			Bounce: true,
			Body: h.body(&messages.BurnNotification{
				QueryID:             9,
				Amount:              abi.NewTokenAmount(500),
				Sender:              h.owner,
				ResponseDestination: response,
			}),
		})
		rt.Call(h.Burn, &messages.Burn{QueryID: 9, Amount: abi.NewTokenAmount(500), ResponseDestination: response})
		rt.Verify()

		assertAmount(t, 100000, h.state(rt).Balance)
	})

	t.Run("non-owner fails 705", func(t *testing.T) {
		rt := h.runtime(100500)
		rt.SetCaller(h.minter)

		rt.ExpectValidateCallerAddr(h.owner)
		rt.ExpectAbort(builtin.ErrNotOwner, func() {
			rt.Call(h.Burn, &messages.Burn{Amount: abi.NewTokenAmount(1)})
		})
		rt.Verify()
	})

	t.Run("amount above balance fails 706", func(t *testing.T) {
		rt := h.runtime(5)

		rt.ExpectValidateCallerAddr(h.owner)
		rt.ExpectAbort(builtin.ErrBalanceTooLow, func() {
			rt.Call(h.Burn, &messages.Burn{Amount: abi.NewTokenAmount(6)})
		})
		rt.Verify()
		assertAmount(t, 5, h.state(rt).Balance)
	})
}

func TestOnBounce(t *testing.T) {
	h := newHarness(t)

	bounced := func(original cell.Marshaler) *messages.Bounced {
		body, err := messages.BounceBody(h.body(original))
		require.NoError(t, err)
		var b messages.Bounced
		require.NoError(t, cell.Unmarshal(body, &b))
		return &b
	}

	t.Run("bounced internal transfer restores the balance", func(t *testing.T) {
		rt := h.runtime(100400)
		rt.SetCaller(tutil.NewAddr(t, "peer wallet"))
		rt.SetBounced(true)

		rt.ExpectValidateCallerAny()
		rt.Call(h.OnBounce, bounced(&messages.InternalTransfer{
			QueryID:          7,
			Amount:           abi.NewTokenAmount(100),
			From:             h.owner,
			ForwardTonAmount: big.Zero(),
		}))
		rt.Verify()
		assertAmount(t, 100500, h.state(rt).Balance)
	})

	t.Run("restore is logged at the actor override level", func(t *testing.T) {
		builtin.SetActorsLogLevel(rtt.ERROR, h.Actor)
		defer builtin.ResetActorsLogLevel()

		rt := h.runtime(0)
		rt.SetCaller(tutil.NewAddr(t, "peer wallet"))
		rt.SetBounced(true)

		rt.ExpectValidateCallerAny()
		rt.Call(h.OnBounce, bounced(&messages.InternalTransfer{
			QueryID:          8,
			Amount:           abi.NewTokenAmount(5),
			From:             h.owner,
			ForwardTonAmount: big.Zero(),
		}))
		rt.Verify()
		assert.Equal(t, []rtt.LogLevel{rtt.ERROR}, rt.LogLevels())
	})

	t.Run("bounced burn notification restores the balance", func(t *testing.T) {
		rt := h.runtime(0)
		rt.SetCaller(h.minter)
		rt.SetBounced(true)

		rt.ExpectValidateCallerAny()
		rt.Call(h.OnBounce, bounced(&messages.BurnNotification{
			QueryID: 1,
			Amount:  abi.NewTokenAmount(42),
			Sender:  h.owner,
		}))
		rt.Verify()
		assertAmount(t, 42, h.state(rt).Balance)
	})

	t.Run("other bounced ops fail 709", func(t *testing.T) {
		rt := h.runtime(1)
		rt.SetBounced(true)

		rt.ExpectValidateCallerAny()
		rt.ExpectAbort(builtin.ErrNotEnoughValue, func() {
			rt.Call(h.OnBounce, bounced(&messages.Excesses{QueryID: 1}))
		})
		rt.Verify()
		assertAmount(t, 1, h.state(rt).Balance)
	})
}

func TestWalletAddress(t *testing.T) {
	owner := tutil.NewAddr(t, "owner")
	minter := tutil.NewAddr(t, "minter")

	a, err := wallet.Address(owner, minter, builtin.WalletCode)
	require.NoError(t, err)
	again, err := wallet.Address(owner, minter, builtin.WalletCode)
	require.NoError(t, err)
	assert.Equal(t, a, again)
	assert.Equal(t, minter.Workchain(), a.Workchain())

	other, err := wallet.Address(tutil.NewAddr(t, "someone else"), minter, builtin.WalletCode)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	otherMinter, err := wallet.Address(owner, tutil.NewAddr(t, "another minter"), builtin.WalletCode)
	require.NoError(t, err)
	assert.NotEqual(t, a, otherMinter)

	otherCode, err := wallet.Address(owner, minter, tutil.NewCodeForTestGetter()())
	require.NoError(t, err)
	assert.NotEqual(t, a, otherCode)
}

func TestStateRoundTrip(t *testing.T) {
	st := wallet.ConstructState(tutil.NewAddr(t, "owner"), tutil.NewAddr(t, "minter"), builtin.WalletCode)
	st.Balance = abi.NewTokenAmount(100500)

	c, err := cell.Marshal(st)
	require.NoError(t, err)
	var decoded wallet.State
	require.NoError(t, cell.Unmarshal(c, &decoded))
	assert.True(t, st.WalletData().Balance.Equals(decoded.Balance))
	assert.Equal(t, st.Owner, decoded.Owner)
	assert.Equal(t, st.Minter, decoded.Minter)
	assert.True(t, st.WalletCode.Equals(decoded.WalletCode))

	_, msgs := wallet.CheckStateInvariants(&decoded, tutil.NewAddr(t, "elsewhere"))
	assert.Len(t, msgs.Messages(), 1)
}
