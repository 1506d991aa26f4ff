package vm

import (
	"fmt"
	"testing"

	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

//
// Message application
//

// ApplyOk applies a message and requires its first delivery to succeed.
func ApplyOk(t testing.TB, v *VM, from, to abi.Address, value abi.TokenAmount, body cell.Marshaler, opts ...MessageOption) *Invocation {
	return ApplyCode(t, v, from, to, value, body, exitcode.Ok, opts...)
}

// ApplyCode applies a message and requires its first delivery to exit with code.
func ApplyCode(t testing.TB, v *VM, from, to abi.Address, value abi.TokenAmount, body cell.Marshaler, code exitcode.ExitCode, opts ...MessageOption) *Invocation {
	var c *cell.Cell
	if body != nil {
		var err error
		c, err = cell.Marshal(body)
		require.NoError(t, err)
	}
	inv, err := v.ApplyMessage(from, to, value, c, opts...)
	require.NoError(t, err)
	require.Equal(t, code, inv.Exitcode, "message to %v failed: %s", to, inv.AbortMsg)
	return inv
}

// AssertInvariants checks the state invariants of every actor in v.
func AssertInvariants(t testing.TB, v *VM) {
	acc, err := CheckStateInvariants(v)
	require.NoError(t, err)
	assert.True(t, acc.IsEmpty(), "invariants violated:\n%v", acc.Messages())
}

//
// Invocation expectations
//

func ExpectAmount(amount abi.TokenAmount) *abi.TokenAmount    { return &amount }
func ExpectAddress(addr abi.Address) *abi.Address              { return &addr }
func ExpectExitCode(code exitcode.ExitCode) *exitcode.ExitCode { return &code }

// ExpectBody expects a body equal to the encoding of m.
func ExpectBody(m cell.Marshaler) *objectExpectation {
	return &objectExpectation{m}
}

type objectExpectation struct {
	val cell.Marshaler
}

// match by cell hash to avoid inconsistencies in internal representations of effectively equal objects
func (oe objectExpectation) matches(body *cell.Cell) bool {
	want, err := cell.Marshal(oe.val)
	if err != nil || body == nil {
		return false
	}
	return want.Equals(body)
}

type ExpectInvocation struct {
	To       abi.Address
	Op       abi.Op
	Exitcode exitcode.ExitCode

	From           *abi.Address
	Value          *abi.TokenAmount
	Body           *objectExpectation
	SubInvocations []ExpectInvocation
}

func (ei ExpectInvocation) Matches(t testing.TB, invocation *Invocation) {
	ei.matches(t, "", invocation)
}

func (ei ExpectInvocation) matches(t testing.TB, breadcrumb string, invocation *Invocation) {
	op, _ := invocation.Msg.Op()
	identifier := fmt.Sprintf("%s[%v:%s]", breadcrumb, invocation.Msg.to, op)

	// mismatch of to or op probably indicates skipped message or messages out of order. halt.
	require.Equal(t, ei.To, invocation.Msg.to, "%s unexpected `to` address", identifier)
	require.Equal(t, ei.Op, op, "%s unexpected op", identifier)

	// other expectations are optional
	if ei.From != nil {
		assert.Equal(t, *ei.From, invocation.Msg.from, "%s unexpected from address", identifier)
	}
	if ei.Value != nil {
		assert.True(t, ei.Value.Equals(invocation.Msg.value), "%s unexpected value %v, want %v", identifier, invocation.Msg.value, *ei.Value)
	}
	if ei.Body != nil {
		assert.True(t, ei.Body.matches(invocation.Msg.body), "%s body isn't equal (%v != %v)", identifier, ei.Body.val, invocation.Msg.body)
	}
	if ei.SubInvocations != nil {
		for i, invk := range invocation.SubInvocations {
			subidentifier := fmt.Sprintf("%s%d:", identifier, i)
			require.Greater(t, len(ei.SubInvocations), i, "%s unexpected subinvocation [%v]", subidentifier, invk.Msg.to)
			ei.SubInvocations[i].matches(t, subidentifier, invk)
		}
		missingInvocations := len(ei.SubInvocations) - len(invocation.SubInvocations)
		if missingInvocations > 0 {
			missingIndex := len(invocation.SubInvocations)
			missingExpect := ei.SubInvocations[missingIndex]
			require.Failf(t, "missing invocation", "%s%d: expected invocation [%v:%s]", identifier, missingIndex, missingExpect.To, missingExpect.Op)
		}
	}

	// expect results
	assert.Equal(t, ei.Exitcode, invocation.Exitcode, "%s unexpected exitcode: %s", identifier, invocation.AbortMsg)
}
