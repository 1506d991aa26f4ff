package builtin

import (
	"testing"

	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestCodes(t *testing.T) {
	assert.Equal(t, "jetton/1/account", ActorNameByCode(AccountActorCodeID))
	assert.Equal(t, "jetton/1/minter", ActorNameByCode(MinterActorCodeID))
	assert.Equal(t, "jetton/1/wallet", ActorNameByCode(WalletActorCodeID))
	assert.Equal(t, "<undefined>", ActorNameByCode(cid.Undef))

	id, err := CodeIDFromCell(WalletCode)
	require.NoError(t, err)
	assert.Equal(t, WalletActorCodeID, id)
	assert.False(t, WalletCode.Equals(MinterCode))

	_, err = CodeIDFromCell(nil)
	assert.Error(t, err)
}

func TestExitCodeWrapping(t *testing.T) {
	err := ErrBalanceTooLow.Wrapf("amount %d exceeds balance %d", 2, 1)
	assert.Equal(t, ErrBalanceTooLow, exitcode.Unwrap(err, exitcode.ErrIllegalState))

	wrapped := xerrors.Errorf("transfer: %w", err)
	assert.Equal(t, ErrBalanceTooLow, exitcode.Unwrap(wrapped, exitcode.ErrIllegalState))

	plain := xerrors.New("no code")
	assert.Equal(t, exitcode.ErrIllegalState, exitcode.Unwrap(plain, exitcode.ErrIllegalState))
}

func TestMessageAccumulator(t *testing.T) {
	acc := &MessageAccumulator{}
	assert.True(t, acc.IsEmpty())

	acc.Require(true, "not added")
	acc.Require(false, "balance %d", -1)
	acc.WithPrefix("wallet %d: ", 7).Addf("owner missing")
	acc.RequireNoError(xerrors.New("boom"), "derive")

	assert.Equal(t, []string{"balance -1", "wallet 7: owner missing", "derive: boom"}, acc.Messages())
}
