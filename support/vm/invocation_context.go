package vm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/exitcode"
	rtt "github.com/filecoin-project/go-state-types/rt"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/actors/runtime"
)

var typeOfRuntimeInterface = reflect.TypeOf((*runtime.Runtime)(nil)).Elem()
var typeOfCellUnmarshaler = reflect.TypeOf((*cell.Unmarshaler)(nil)).Elem()

// invocationContext runs one message against one actor. Storage writes and
// sends are held here and reach the VM only if the handler returns.
type invocationContext struct {
	vm   *VM
	msg  *internalMessage
	impl runtime.VMActor

	head    cid.Cid
	balance abi.TokenAmount

	isCallerValidated bool
	inTransaction     bool

	outbound []*internalMessage
	sent     abi.TokenAmount
	logs     []string
	abortMsg string
}

func newInvocationContext(vm *VM, msg *internalMessage, to *Actor, impl runtime.VMActor) *invocationContext {
	return &invocationContext{
		vm:      vm,
		msg:     msg,
		impl:    impl,
		head:    to.Head,
		balance: to.Balance,
		sent:    big.Zero(),
	}
}

type abort struct {
	code exitcode.ExitCode
	msg  string
}

// invoke dispatches the message to the handler its op selects. Aborts become
// the returned exit code; any other panic is a fault of the actor code and
// is returned as an error.
func (ic *invocationContext) invoke() (code exitcode.ExitCode, err error) {
	defer func() {
		if r := recover(); r != nil {
			if a, ok := r.(abort); ok {
				code = a.code
				ic.abortMsg = a.msg
				ic.outbound = nil
				return
			}
			err = xerrors.Errorf("%s at %v panicked: %v", builtin.ActorNameByCode(ic.impl.Code()), ic.msg.to, r)
		}
	}()

	op, ok := ic.msg.Op()
	if !ok {
		// plain top-up
		return exitcode.Ok, nil
	}
	method, ok := ic.impl.Exports()[op]
	if !ok {
		if ic.msg.bounced {
			return exitcode.Ok, nil
		}
		ic.Abortf(builtin.ErrUnknownOp, "%s has no handler for %s", builtin.ActorNameByCode(ic.impl.Code()), op)
	}

	meth := reflect.ValueOf(method)
	ic.checkExportedMethod(meth)
	params := reflect.New(meth.Type().In(1).Elem())
	if err := cell.Unmarshal(ic.msg.body, params.Interface().(cell.Unmarshaler)); err != nil {
		ic.Abortf(exitcode.ErrSerialization, "failed to decode %s body: %s", op, err)
	}

	meth.Call([]reflect.Value{reflect.ValueOf(ic), params})

	if !ic.isCallerValidated {
		ic.Abortf(exitcode.SysErrorIllegalActor, "caller MUST be validated during method execution")
	}
	if ic.inTransaction {
		ic.Abortf(exitcode.SysErrorIllegalActor, "transaction left open")
	}
	return exitcode.Ok, nil
}

func (ic *invocationContext) checkExportedMethod(meth reflect.Value) {
	t := meth.Type()
	if t.Kind() != reflect.Func || t.NumIn() != 2 || t.NumOut() != 1 ||
		t.In(0) != typeOfRuntimeInterface ||
		t.In(1).Kind() != reflect.Ptr || !t.In(1).Implements(typeOfCellUnmarshaler) {
		panic(fmt.Sprintf("exported method has signature %v, want func(runtime.Runtime, *P) *abi.EmptyValue", t))
	}
}

///// Runtime implementation /////

var _ runtime.Runtime = (*invocationContext)(nil)

func (ic *invocationContext) Message() runtime.Message {
	return ic.msg
}

func (ic *invocationContext) LogicalTime() uint64 {
	return ic.msg.lt
}

func (ic *invocationContext) ValidateImmediateCallerAcceptAny() {
	ic.assertf(!ic.isCallerValidated, "caller has been double validated")
	ic.isCallerValidated = true
}

func (ic *invocationContext) ValidateImmediateCallerIs(code exitcode.ExitCode, addrs ...abi.Address) {
	ic.assertf(!ic.isCallerValidated, "caller has been double validated")
	ic.isCallerValidated = true
	for _, a := range addrs {
		if a == ic.msg.from {
			return
		}
	}
	ic.Abortf(code, "caller %v is not one of %v", ic.msg.from, addrs)
}

func (ic *invocationContext) CurrentBalance() abi.TokenAmount {
	return big.Sub(ic.balance, ic.sent)
}

func (ic *invocationContext) State() runtime.StateHandle {
	return ic
}

func (ic *invocationContext) Send(msg runtime.OutboundMessage) {
	ic.assertf(!ic.inTransaction, "side-effect within transaction")
	if msg.To.Empty() {
		ic.Abortf(exitcode.SysErrorIllegalArgument, "send to the absent address")
	}
	if msg.Value.LessThan(big.Zero()) {
		ic.Abortf(exitcode.SysErrorIllegalArgument, "negative send value %v", msg.Value)
	}
	if msg.Value.GreaterThan(ic.CurrentBalance()) {
		ic.Abortf(exitcode.SysErrInsufficientFunds, "send of %v exceeds balance %v", msg.Value, ic.CurrentBalance())
	}
	ic.sent = big.Add(ic.sent, msg.Value)
	ic.outbound = append(ic.outbound, &internalMessage{
		from:   ic.msg.to,
		to:     msg.To,
		value:  msg.Value,
		bounce: msg.Bounce,
		init:   msg.Init,
		body:   msg.Body,
	})
}

func (ic *invocationContext) Abortf(errExitCode exitcode.ExitCode, msg string, args ...interface{}) {
	panic(abort{errExitCode, fmt.Sprintf(msg, args...)})
}

func (ic *invocationContext) Log(level rtt.LogLevel, msg string, args ...interface{}) {
	line := fmt.Sprintf("%v: %s", ic.msg.to, fmt.Sprintf(msg, args...))
	ic.logs = append(ic.logs, line)
	switch level {
	case rtt.DEBUG:
		log.Debug(line)
	case rtt.INFO:
		log.Info(line)
	case rtt.WARN:
		log.Warn(line)
	default:
		log.Error(line)
	}
}

func (ic *invocationContext) Context() context.Context {
	return ic.vm.ctx
}

func (ic *invocationContext) assertf(predicate bool, msg string, args ...interface{}) {
	if !predicate {
		ic.Abortf(exitcode.SysErrorIllegalActor, msg, args...)
	}
}

///// State handle implementation /////

var _ runtime.StateHandle = (*invocationContext)(nil)

func (ic *invocationContext) Create(obj cell.Marshaler) {
	ic.assertf(ic.head.Equals(ic.vm.emptyCell), "state already initialized")
	ic.head = ic.putState(obj)
}

func (ic *invocationContext) Readonly(obj cell.Unmarshaler) {
	c, err := ic.vm.getCell(ic.head)
	if err != nil {
		ic.Abortf(exitcode.ErrIllegalState, "failed to load state %v: %s", ic.head, err)
	}
	if err := cell.Unmarshal(c, obj); err != nil {
		ic.Abortf(exitcode.ErrIllegalState, "failed to decode state %v: %s", ic.head, err)
	}
}

func (ic *invocationContext) Transaction(obj cell.MarshalUnmarshaler, f func()) {
	ic.assertf(obj != nil, "must not pass nil to Transaction()")
	ic.assertf(!ic.inTransaction, "nested transaction")
	ic.Readonly(obj)
	ic.inTransaction = true
	f()
	ic.inTransaction = false
	ic.head = ic.putState(obj)
}

func (ic *invocationContext) putState(obj cell.Marshaler) cid.Cid {
	c, err := cell.Marshal(obj)
	if err != nil {
		ic.Abortf(exitcode.ErrSerialization, "failed to encode state: %s", err)
	}
	head, err := ic.vm.putCell(c)
	if err != nil {
		panic(err)
	}
	return head
}
