package messages_test

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/minio/sha256-simd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xorcare/golden"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin/messages"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

func namedAddr(name string) abi.Address {
	return abi.NewAddress(0, sha256.Sum256([]byte(name)))
}

var (
	owner       = namedAddr("owner")
	destination = namedAddr("destination")
	response    = namedAddr("response")
)

func payload(t *testing.T) *cell.Cell {
	c, err := cell.BeginCell().StoreUint(0, 32).StoreBytes([]byte("hi")).EndCell()
	require.NoError(t, err)
	return c
}

type namedBody struct {
	name string
	body messages.Body
}

func vectors(t *testing.T) []namedBody {
	content, err := cell.BeginCell().StoreUint(1, 8).EndCell()
	require.NoError(t, err)

	return []namedBody{
		{"transfer", &messages.Transfer{
			QueryID:             1,
			Amount:              abi.NewTokenAmount(100),
			Destination:         destination,
			ResponseDestination: response,
			ForwardTonAmount:    abi.NewTokenAmount(5),
			ForwardPayload:      payload(t),
		}},
		{"internal_transfer", &messages.InternalTransfer{
			QueryID:          2,
			Amount:           abi.NewTokenAmount(888),
			From:             owner,
			ResponseAddress:  response,
			ForwardTonAmount: abi.NewTokenAmount(0),
		}},
		{"transfer_notification", &messages.TransferNotification{
			QueryID:        3,
			Amount:         abi.NewTokenAmount(100),
			Sender:         owner,
			ForwardPayload: payload(t),
		}},
		{"excesses", &messages.Excesses{QueryID: 4}},
		{"burn", &messages.Burn{
			QueryID:             5,
			Amount:              abi.NewTokenAmount(10),
			ResponseDestination: response,
		}},
		{"burn_notification", &messages.BurnNotification{
			QueryID:             6,
			Amount:              abi.NewTokenAmount(10),
			Sender:              owner,
			ResponseDestination: response,
		}},
		{"mint", &messages.Mint{
			QueryID:   7,
			To:        owner,
			TonAmount: abi.NewTokenAmount(50000000),
			MasterMsg: messages.InternalTransfer{
				QueryID:          7,
				Amount:           abi.NewTokenAmount(888),
				ResponseAddress:  owner,
				ForwardTonAmount: abi.NewTokenAmount(0),
			},
		}},
		{"change_admin", &messages.ChangeAdmin{QueryID: 8, NewAdmin: destination}},
		{"change_content", &messages.ChangeContent{QueryID: 9, Content: content}},
		{"provide_wallet_address", &messages.ProvideWalletAddress{QueryID: 10, Owner: owner, IncludeAddress: true}},
		{"take_wallet_address", &messages.TakeWalletAddress{QueryID: 11, WalletAddress: destination, Owner: owner}},
	}
}

func bocHex(t *testing.T, c *cell.Cell) string {
	data, err := cell.ToBOC(c, false)
	require.NoError(t, err)
	return hex.EncodeToString(data)
}

func TestWireVectors(t *testing.T) {
	b := &bytes.Buffer{}
	var internal *cell.Cell
	for _, v := range vectors(t) {
		c, err := cell.Marshal(v.body)
		require.NoError(t, err, v.name)
		if v.name == "internal_transfer" {
			internal = c
		}
		fmt.Fprintf(b, "%s %s\n", v.name, bocHex(t, c))
	}
	bounced, err := messages.BounceBody(internal)
	require.NoError(t, err)
	fmt.Fprintf(b, "bounced_internal_transfer %s\n", bocHex(t, bounced))

	golden.Assert(t, b.Bytes())
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, v := range vectors(t) {
		c, err := cell.Marshal(v.body)
		require.NoError(t, err, v.name)

		decoded, err := messages.Decode(c)
		require.NoError(t, err, v.name)
		assert.Equal(t, v.body.Op(), decoded.Op(), v.name)

		again, err := cell.Marshal(decoded)
		require.NoError(t, err, v.name)
		assert.True(t, c.Equals(again), "%s does not round trip", v.name)
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Run("wrong kind", func(t *testing.T) {
		c, err := cell.Marshal(&messages.Excesses{QueryID: 1})
		require.NoError(t, err)
		var burn messages.Burn
		assert.ErrorIs(t, cell.Unmarshal(c, &burn), messages.ErrUnexpectedOp)
	})

	t.Run("unknown op", func(t *testing.T) {
		c, err := cell.BeginCell().StoreUint(0x12345678, 32).StoreUint(0, 64).EndCell()
		require.NoError(t, err)
		_, err = messages.Decode(c)
		assert.ErrorIs(t, err, messages.ErrUnexpectedOp)
	})

	t.Run("truncated body", func(t *testing.T) {
		c, err := cell.BeginCell().StoreUint(uint64((&messages.Transfer{}).Op()), 32).StoreUint(1, 64).StoreUint(2, 4).EndCell()
		require.NoError(t, err)
		var transfer messages.Transfer
		assert.ErrorIs(t, cell.Unmarshal(c, &transfer), cell.ErrNotEnoughBits)
	})

	t.Run("trailing reference", func(t *testing.T) {
		b := cell.BeginCell()
		require.NoError(t, (&messages.Excesses{QueryID: 1}).MarshalCell(b))
		c, err := b.StoreRef(cell.Empty()).EndCell()
		require.NoError(t, err)
		var excesses messages.Excesses
		assert.ErrorIs(t, cell.Unmarshal(c, &excesses), cell.ErrRefCountMismatch)
	})

	t.Run("mint without recipient", func(t *testing.T) {
		m := &messages.Mint{QueryID: 1, TonAmount: abi.NewTokenAmount(1), MasterMsg: messages.InternalTransfer{
			Amount:           abi.NewTokenAmount(1),
			ForwardTonAmount: abi.NewTokenAmount(0),
		}}
		c, err := cell.Marshal(m)
		require.NoError(t, err)
		var decoded messages.Mint
		assert.ErrorIs(t, cell.Unmarshal(c, &decoded), abi.ErrUnsupportedAddress)
	})
}

func TestBounced(t *testing.T) {
	original, err := cell.Marshal(&messages.InternalTransfer{
		QueryID:          42,
		Amount:           abi.NewTokenAmount(100400),
		From:             owner,
		ResponseAddress:  response,
		ForwardTonAmount: abi.NewTokenAmount(1),
		ForwardPayload:   payload(t),
	})
	require.NoError(t, err)

	body, err := messages.BounceBody(original)
	require.NoError(t, err)
	assert.Equal(t, 32+messages.BouncedBodyBits, body.BitLen())
	assert.Equal(t, 0, body.RefCount())

	var bounced messages.Bounced
	require.NoError(t, cell.Unmarshal(body, &bounced))
	assert.Equal(t, (&messages.InternalTransfer{}).Op(), bounced.Op)
	assert.Equal(t, uint64(42), bounced.QueryID)

	amount, err := bounced.Amount()
	require.NoError(t, err)
	assert.Equal(t, abi.NewTokenAmount(100400), amount)

	again, err := cell.Marshal(&bounced)
	require.NoError(t, err)
	assert.True(t, body.Equals(again))
}
