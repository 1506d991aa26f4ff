package mock

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"testing"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/exitcode"
	rtt "github.com/filecoin-project/go-state-types/rt"
	cid "github.com/ipfs/go-cid"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/actors/runtime"
)

// A mock runtime for unit testing of actors in isolation.
// The mock allows direct configuration of the runtime context as observable by an actor, supports
// the storage interface, and mocks out side-effect-inducing calls.
type Runtime struct {
	// Execution context
	ctx           context.Context
	lt            uint64
	receiver      abi.Address
	caller        abi.Address
	valueReceived abi.TokenAmount
	bounced       bool

	// Actor state
	state   cid.Cid
	balance abi.TokenAmount

	// VM implementation
	inCall        bool
	store         map[cid.Cid]*cell.Cell
	inTransaction bool
	logs          []string
	logLevels     []rtt.LogLevel

	// Expectations
	t                        testing.TB
	expectValidateCallerAny  bool
	expectValidateCallerAddr []abi.Address
	expectSends              []*expectedMessage
}

type expectedMessage struct {
	msg runtime.OutboundMessage
}

func sameCell(a, b *cell.Cell) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(b)
}

func sameInit(a, b *abi.StateInit) bool {
	if a == nil || b == nil {
		return a == b
	}
	return sameCell(a.Code, b.Code) && sameCell(a.Data, b.Data)
}

func (m *expectedMessage) Equal(msg runtime.OutboundMessage) bool {
	return m.msg.To == msg.To &&
		m.msg.Value.Equals(msg.Value) &&
		m.msg.Bounce == msg.Bounce &&
		sameInit(m.msg.Init, msg.Init) &&
		sameCell(m.msg.Body, msg.Body)
}

func (m *expectedMessage) String() string {
	return describe(m.msg)
}

func describe(msg runtime.OutboundMessage) string {
	return fmt.Sprintf("to: %v value: %v bounce: %v init: %v body: %v", msg.To, msg.Value, msg.Bounce, msg.Init != nil, msg.Body)
}

var _ runtime.Runtime = &Runtime{}
var _ runtime.StateHandle = &Runtime{}
var typeOfRuntimeInterface = reflect.TypeOf((*runtime.Runtime)(nil)).Elem()
var typeOfCellUnmarshaler = reflect.TypeOf((*cell.Unmarshaler)(nil)).Elem()
var typeOfCellMarshaler = reflect.TypeOf((*cell.Marshaler)(nil)).Elem()

///// Implementation of the runtime API /////

func (rt *Runtime) Message() runtime.Message {
	rt.requireInCall()
	return rt
}

func (rt *Runtime) LogicalTime() uint64 {
	rt.requireInCall()
	return rt.lt
}

func (rt *Runtime) ValidateImmediateCallerAcceptAny() {
	rt.requireInCall()
	if !rt.expectValidateCallerAny {
		rt.failTest("unexpected validate-caller-any")
	}
	rt.expectValidateCallerAny = false
}

func (rt *Runtime) ValidateImmediateCallerIs(code exitcode.ExitCode, addrs ...abi.Address) {
	rt.requireInCall()
	rt.checkArgument(len(addrs) > 0, "addrs must be non-empty")
	// Check and clear expectations.
	if len(rt.expectValidateCallerAddr) == 0 {
		rt.failTest("unexpected validate caller addrs")
		return
	}
	if !reflect.DeepEqual(rt.expectValidateCallerAddr, addrs) {
		rt.failTest("unexpected validate caller addrs %v, expected %v", addrs, rt.expectValidateCallerAddr)
		return
	}
	defer func() {
		rt.expectValidateCallerAddr = nil
	}()

	// Implement method.
	for _, expected := range addrs {
		if rt.caller == expected {
			return
		}
	}
	rt.Abortf(code, "caller address %v forbidden, allowed: %v", rt.caller, addrs)
}

func (rt *Runtime) CurrentBalance() abi.TokenAmount {
	rt.requireInCall()
	return rt.balance
}

func (rt *Runtime) State() runtime.StateHandle {
	rt.requireInCall()
	return rt
}

func (rt *Runtime) Send(msg runtime.OutboundMessage) {
	rt.requireInCall()
	if rt.inTransaction {
		rt.Abortf(exitcode.SysErrorIllegalActor, "side-effect within transaction")
	}
	if len(rt.expectSends) == 0 {
		rt.failTestNow("unexpected send %s", describe(msg))
	}
	expectedMsg := rt.expectSends[0]

	if !expectedMsg.Equal(msg) {
		rt.failTest("send does not match expectation.\n"+
			"Call     - %s\n"+
			"Expected - %v", describe(msg), expectedMsg)
	}

	if msg.Value.GreaterThan(rt.balance) {
		rt.Abortf(exitcode.SysErrInsufficientFunds, "cannot send value: %v exceeds balance: %v", msg.Value, rt.balance)
	}

	// pop the expectedMessage from the queue and modify the mockrt balance to reflect the send.
	rt.expectSends = rt.expectSends[1:]
	rt.balance = big.Sub(rt.balance, msg.Value)
}

func (rt *Runtime) Abortf(errExitCode exitcode.ExitCode, msg string, args ...interface{}) {
	rt.requireInCall()
	rt.t.Logf("Mock Runtime Abort ExitCode: %v Reason: %s", errExitCode, fmt.Sprintf(msg, args...))
	panic(abort{errExitCode, fmt.Sprintf(msg, args...)})
}

func (rt *Runtime) Log(level rtt.LogLevel, msg string, args ...interface{}) {
	rt.requireInCall()
	line := fmt.Sprintf(msg, args...)
	rt.logs = append(rt.logs, line)
	rt.logLevels = append(rt.logLevels, level)
	rt.t.Logf("Mock Runtime Log %v: %s", level, line)
}

func (rt *Runtime) Context() context.Context {
	return rt.ctx
}

func (rt *Runtime) checkArgument(predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.Abortf(exitcode.SysErrorIllegalArgument, msg, args...)
	}
}

///// Store implementation /////

func (rt *Runtime) get(c cid.Cid, o cell.Unmarshaler) bool {
	root, found := rt.store[c]
	if found {
		if err := cell.Unmarshal(root, o); err != nil {
			rt.Abortf(exitcode.ErrSerialization, "%s", err)
		}
	}
	return found
}

func (rt *Runtime) put(o cell.Marshaler) cid.Cid {
	root, err := cell.Marshal(o)
	if err != nil {
		rt.Abortf(exitcode.ErrSerialization, "%s", err)
	}
	key, _, err := abi.CellCid(root)
	if err != nil {
		rt.Abortf(exitcode.ErrSerialization, "%s", err)
	}
	rt.store[key] = root
	return key
}

///// Message implementation /////

func (rt *Runtime) Caller() abi.Address {
	return rt.caller
}

func (rt *Runtime) Receiver() abi.Address {
	return rt.receiver
}

func (rt *Runtime) ValueReceived() abi.TokenAmount {
	return rt.valueReceived
}

func (rt *Runtime) Bounced() bool {
	return rt.bounced
}

///// State handle implementation /////

func (rt *Runtime) Create(obj cell.Marshaler) {
	if rt.state.Defined() {
		rt.Abortf(exitcode.SysErrorIllegalActor, "state already constructed")
	}
	rt.state = rt.put(obj)
}

func (rt *Runtime) Readonly(st cell.Unmarshaler) {
	found := rt.get(rt.state, st)
	if !found {
		rt.Abortf(exitcode.SysErrorIllegalActor, "actor state not found: %v", rt.state)
	}
}

func (rt *Runtime) Transaction(st cell.MarshalUnmarshaler, f func()) {
	if rt.inTransaction {
		rt.Abortf(exitcode.SysErrorIllegalActor, "nested transaction")
	}
	rt.Readonly(st)
	rt.inTransaction = true
	defer func() { rt.inTransaction = false }()
	f()
	rt.state = rt.put(st)
}

type abort struct {
	code exitcode.ExitCode
	msg  string
}

func (a abort) String() string {
	return fmt.Sprintf("abort(%v): %s", a.code, a.msg)
}

///// Inspection facilities /////

func (rt *Runtime) GetReceiver() abi.Address {
	return rt.receiver
}

func (rt *Runtime) StateRoot() cid.Cid {
	return rt.state
}

// StateCell returns the storage image of the actor.
func (rt *Runtime) StateCell() *cell.Cell {
	root, found := rt.store[rt.state]
	if !found {
		rt.failTestNow("can't find state at root %v", rt.state)
	}
	return root
}

func (rt *Runtime) GetState(o cell.Unmarshaler) {
	if err := cell.Unmarshal(rt.StateCell(), o); err != nil {
		rt.failTestNow("error loading state: %v", err)
	}
}

func (rt *Runtime) GetBalance() abi.TokenAmount {
	return rt.balance
}

// Logs returns the lines the actor logged so far.
func (rt *Runtime) Logs() []string {
	return rt.logs
}

// LogLevels returns the level of each line in Logs.
func (rt *Runtime) LogLevels() []rtt.LogLevel {
	return rt.logLevels
}

///// Mocking facilities /////

func (rt *Runtime) SetCaller(address abi.Address) {
	rt.caller = address
}

func (rt *Runtime) SetBalance(amt abi.TokenAmount) {
	rt.balance = amt
}

// SetReceived sets the value attached to the next call. The value is also
// credited to the balance, as the substrate does on delivery.
func (rt *Runtime) SetReceived(amt abi.TokenAmount) {
	rt.valueReceived = amt
	rt.balance = big.Add(rt.balance, amt)
}

func (rt *Runtime) SetBounced(bounced bool) {
	rt.bounced = bounced
}

func (rt *Runtime) SetLogicalTime(lt uint64) {
	rt.lt = lt
}

// ReplaceState stores o as the actor state, outside of any call.
func (rt *Runtime) ReplaceState(o cell.Marshaler) {
	rt.state = rt.put(o)
}

func (rt *Runtime) ExpectValidateCallerAny() {
	rt.expectValidateCallerAny = true
}

func (rt *Runtime) ExpectValidateCallerAddr(addrs ...abi.Address) {
	rt.require(len(addrs) > 0, "addrs must be non-empty")
	rt.expectValidateCallerAddr = addrs[:]
}

func (rt *Runtime) ExpectSend(msg runtime.OutboundMessage) {
	// append to the send queue
	rt.expectSends = append(rt.expectSends, &expectedMessage{msg: msg})
}

// Verifies that expected calls were received, and resets all expectations.
func (rt *Runtime) Verify() {
	if rt.expectValidateCallerAny {
		rt.failTest("expected ValidateCallerAny, not received")
	}
	if len(rt.expectValidateCallerAddr) > 0 {
		rt.failTest("expected ValidateCallerAddr %v, not received", rt.expectValidateCallerAddr)
	}
	if len(rt.expectSends) > 0 {
		rt.failTest("expected all message to be send, unsent messages %v", rt.expectSends)
	}

	rt.Reset()
}

// Resets expectations
func (rt *Runtime) Reset() {
	rt.expectValidateCallerAny = false
	rt.expectValidateCallerAddr = nil
	rt.expectSends = nil
}

// Calls f() expecting it to invoke Runtime.Abortf() with a specified exit code.
func (rt *Runtime) ExpectAbort(expected exitcode.ExitCode, f func()) {
	prevState := rt.state
	prevBalance := rt.balance

	defer func() {
		r := recover()
		if r == nil {
			rt.failTest("expected abort with code %v but call succeeded", expected)
			return
		}
		a, ok := r.(abort)
		if !ok {
			panic(r)
		}
		if a.code != expected {
			rt.failTest("abort expected code %v, got %v %s", expected, a.code, a.msg)
		}
		// Roll back state change.
		rt.state = prevState
		rt.balance = prevBalance
		rt.inTransaction = false
	}()
	f()
}

// Call invokes an exported method with the given message body.
func (rt *Runtime) Call(method interface{}, params interface{}) interface{} {
	meth := reflect.ValueOf(method)
	rt.verifyExportedMethodType(meth)

	// There's no panic recovery here. If an abort is expected, this call will be inside an ExpectAbort block.
	// If not expected, the panic will escape and cause the test to fail.

	rt.inCall = true
	defer func() { rt.inCall = false }()
	var arg reflect.Value
	if params != nil {
		arg = reflect.ValueOf(params)
	} else {
		arg = reflect.ValueOf(abi.Empty)
	}
	ret := meth.Call([]reflect.Value{reflect.ValueOf(rt), arg})
	return ret[0].Interface()
}

func (rt *Runtime) verifyExportedMethodType(meth reflect.Value) {
	t := meth.Type()
	rt.require(t.Kind() == reflect.Func, "%v is not a function", meth)
	rt.require(t.NumIn() == 2, "exported method %v must have two parameters, got %v", meth, t.NumIn())
	rt.require(t.In(0) == typeOfRuntimeInterface, "exported method first parameter must be runtime, got %v", t.In(0))
	rt.require(t.In(1).Kind() == reflect.Ptr, "exported method second parameter must be pointer to params, got %v", t.In(1))
	rt.require(t.In(1).Implements(typeOfCellUnmarshaler), "exported method second parameter must be cell-unmarshalable params, got %v", t.In(1))
	rt.require(t.NumOut() == 1, "exported method must return a single value")
	rt.require(t.Out(0).Implements(typeOfCellMarshaler), "exported method must return cell-marshalable value")
}

func (rt *Runtime) requireInCall() {
	rt.require(rt.inCall, "invalid runtime invocation outside of method call")
}

func (rt *Runtime) require(predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.failTestNow(msg, args...)
	}
}

func (rt *Runtime) failTest(msg string, args ...interface{}) {
	rt.t.Logf(msg, args...)
	rt.t.Logf("%s", debug.Stack())
	rt.t.Fail()
}

func (rt *Runtime) failTestNow(msg string, args ...interface{}) {
	rt.t.Logf(msg, args...)
	rt.t.Logf("%s", debug.Stack())
	rt.t.FailNow()
}
