package vm

import (
	"context"
	"sync"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/exitcode"
	block "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	ipldcbor "github.com/ipfs/go-ipld-cbor"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/builtin/messages"
	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/actors/runtime"
	"github.com/jetton-project/jetton-actors/actors/util/adt"
)

var log = logging.Logger("jetton/vm")

// BasechainID is the workchain Deploy places actors in.
const BasechainID int8 = 0

// MaxWaves bounds the chain of messages one external message may cause.
const MaxWaves = 256

var (
	ErrActorNotFound = xerrors.New("actor not found")
	ErrActorExists   = xerrors.New("actor already deployed")
)

// VM holds the state and delivers messages over the state.
type VM struct {
	ctx   context.Context
	bs    ipldcbor.IpldBlockstore
	store adt.Store

	actorImpls ActorImplLookup

	// Guards actors while a wave runs.
	mu        sync.Mutex
	actors    *adt.Map // The current (not necessarily committed) root node.
	actorRoot cid.Cid  // The last committed root.

	// Storage of accounts that hold value but were never deployed.
	emptyCell cid.Cid

	receipts *adt.Array
	lt       uint64
	pending  []*internalMessage

	invocations []*Invocation
	logs        []string
	vectors     *vectorGen
}

// VM types

// Actor is the state tree record of one account.
type Actor struct {
	Code    cid.Cid
	Head    cid.Cid // Storage cell, serialized as a bag of cells.
	Balance abi.TokenAmount
	LastLT  uint64
}

func (a *Actor) Initialized() bool {
	return !a.Code.Equals(builtin.UninitActorCodeID)
}

type ActorImplLookup map[cid.Cid]runtime.VMActor

// NewVM creates a new substrate over a block store.
func NewVM(ctx context.Context, actorImpls ActorImplLookup, bs ipldcbor.IpldBlockstore) *VM {
	store := adt.WrapBlockStore(ctx, bs)
	actors, err := adt.MakeEmptyMap(store, adt.DefaultHamtBitwidth)
	if err != nil {
		panic(err)
	}
	actorRoot, err := actors.Root()
	if err != nil {
		panic(err)
	}
	receipts, err := adt.MakeEmptyArray(store, adt.DefaultAmtBitwidth)
	if err != nil {
		panic(err)
	}

	vm := &VM{
		ctx:        ctx,
		bs:         bs,
		store:      store,
		actorImpls: actorImpls,
		actors:     actors,
		actorRoot:  actorRoot,
		receipts:   receipts,
		vectors:    newVectorGen(),
	}
	if vm.emptyCell, err = vm.putCell(cell.Empty()); err != nil {
		panic(err)
	}
	return vm
}

func (vm *VM) uninitActor() *Actor {
	return &Actor{
		Code:    builtin.UninitActorCodeID,
		Head:    vm.emptyCell,
		Balance: big.Zero(),
	}
}

func (vm *VM) Store() adt.Store {
	return vm.store
}

// StateRoot returns the last committed root of the actor table.
func (vm *VM) StateRoot() cid.Cid {
	return vm.actorRoot
}

func (vm *VM) checkpoint() (cid.Cid, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	root, err := vm.actors.Root()
	if err != nil {
		return cid.Undef, xerrors.Errorf("failed to flush actor table: %w", err)
	}
	vm.actorRoot = root
	return root, nil
}

func (vm *VM) GetActor(a abi.Address) (*Actor, bool, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	var act Actor
	found, err := vm.actors.Get(a, &act)
	if err != nil {
		return nil, false, err
	}
	return &act, found, nil
}

// setActor sets the the actor to the given value whether it previously existed or not.
func (vm *VM) setActor(key abi.Address, a *Actor) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if err := vm.actors.Put(key, a); err != nil {
		return xerrors.Errorf("setting actor %v in state tree failed: %w", key, err)
	}
	return nil
}

// ForEachActor visits every record of the state tree.
func (vm *VM) ForEachActor(f func(addr abi.Address, act *Actor) error) error {
	type entry struct {
		addr abi.Address
		act  Actor
	}
	var entries []entry
	vm.mu.Lock()
	var act Actor
	err := vm.actors.ForEach(&act, func(k string) error {
		addr, err := abi.AddressFromBytes([]byte(k))
		if err != nil {
			return err
		}
		entries = append(entries, entry{addr, act})
		return nil
	})
	vm.mu.Unlock()
	if err != nil {
		return err
	}

	for i := range entries {
		if err := f(entries[i].addr, &entries[i].act); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) putCell(c *cell.Cell) (cid.Cid, error) {
	id, data, err := abi.CellCid(c)
	if err != nil {
		return cid.Undef, err
	}
	blk, err := block.NewBlockWithCid(data, id)
	if err != nil {
		return cid.Undef, err
	}
	if err := vm.bs.Put(blk); err != nil {
		return cid.Undef, xerrors.Errorf("failed to store cell %v: %w", id, err)
	}
	return id, nil
}

func (vm *VM) getCell(id cid.Cid) (*cell.Cell, error) {
	blk, err := vm.bs.Get(id)
	if err != nil {
		return nil, err
	}
	return cell.FromBOC(blk.RawData())
}

// StorageCell returns the storage of a deployed actor.
func (vm *VM) StorageCell(addr abi.Address) (*cell.Cell, error) {
	act, found, err := vm.GetActor(addr)
	if err != nil {
		return nil, err
	}
	if !found || !act.Initialized() {
		return nil, xerrors.Errorf("%v: %w", addr, ErrActorNotFound)
	}
	return vm.getCell(act.Head)
}

// GetState decodes the storage of a deployed actor into out.
func (vm *VM) GetState(addr abi.Address, out cell.Unmarshaler) error {
	c, err := vm.StorageCell(addr)
	if err != nil {
		return err
	}
	return cell.Unmarshal(c, out)
}

// GetBalance returns the native balance of an account, zero when unknown.
func (vm *VM) GetBalance(addr abi.Address) (abi.TokenAmount, error) {
	act, found, err := vm.GetActor(addr)
	if err != nil {
		return big.Zero(), err
	}
	if !found {
		return big.Zero(), nil
	}
	return act.Balance, nil
}

// Deploy creates an actor in the basechain at the address derived from its
// code and initial storage.
func (vm *VM) Deploy(code, data *cell.Cell, balance abi.TokenAmount) (abi.Address, error) {
	return vm.DeployInWorkchain(BasechainID, code, data, balance)
}

func (vm *VM) DeployInWorkchain(workchain int8, code, data *cell.Cell, balance abi.TokenAmount) (abi.Address, error) {
	return vm.DeployWithStorage(workchain, &abi.StateInit{Code: code, Data: data}, data, balance)
}

// DeployWithStorage creates the actor at the address init derives, with
// storage in place of the initial data. The actor starts as if it had
// already processed messages.
func (vm *VM) DeployWithStorage(workchain int8, init *abi.StateInit, storage *cell.Cell, balance abi.TokenAmount) (abi.Address, error) {
	addr, err := init.Address(workchain)
	if err != nil {
		return abi.Undef, err
	}
	codeID, err := builtin.CodeIDFromCell(init.Code)
	if err != nil {
		return abi.Undef, err
	}
	if _, ok := vm.actorImpls[codeID]; !ok {
		return abi.Undef, xerrors.Errorf("no implementation for code %v", codeID)
	}

	act, found, err := vm.GetActor(addr)
	if err != nil {
		return abi.Undef, err
	}
	if found && act.Initialized() {
		return abi.Undef, xerrors.Errorf("%v: %w", addr, ErrActorExists)
	}
	if !found {
		act = vm.uninitActor()
	}
	head, err := vm.putCell(storage)
	if err != nil {
		return abi.Undef, err
	}
	act.Code = codeID
	act.Head = head
	act.Balance = big.Add(act.Balance, balance)
	if err := vm.setActor(addr, act); err != nil {
		return abi.Undef, err
	}
	if _, err := vm.checkpoint(); err != nil {
		return abi.Undef, err
	}
	log.Infof("deployed %s at %v", builtin.ActorNameByCode(codeID), addr)
	return addr, nil
}

// MessageOption adjusts an external message before it is queued.
type MessageOption func(*internalMessage)

// WithStateInit attaches code and data deploying the recipient.
func WithStateInit(init *abi.StateInit) MessageOption {
	return func(m *internalMessage) {
		m.init = init
	}
}

// NonBounceable keeps the value with the recipient when delivery fails.
func NonBounceable() MessageOption {
	return func(m *internalMessage) {
		m.bounce = false
	}
}

// ApplyMessage sends value and body from an account actor and delivers the
// message and every message it causes. The returned invocation is the root
// of the resulting trace.
func (vm *VM) ApplyMessage(from, to abi.Address, value abi.TokenAmount, body *cell.Cell, opts ...MessageOption) (*Invocation, error) {
	fromActor, found, err := vm.GetActor(from)
	if err != nil {
		return nil, err
	}
	if !found || !fromActor.Code.Equals(builtin.AccountActorCodeID) {
		return nil, exitcode.SysErrSenderInvalid.Wrapf("sender %v is not an account", from)
	}
	if value.LessThan(big.Zero()) {
		return nil, exitcode.SysErrorIllegalArgument.Wrapf("negative value %v", value)
	}
	if value.GreaterThan(fromActor.Balance) {
		return nil, exitcode.SysErrInsufficientFunds.Wrapf("sender %v holds %v, message carries %v", from, fromActor.Balance, value)
	}
	if to.Empty() {
		return nil, exitcode.SysErrInvalidReceiver.Wrapf("message has no destination")
	}

	fromActor.Balance = big.Sub(fromActor.Balance, value)
	if err := vm.setActor(from, fromActor); err != nil {
		return nil, err
	}

	msg := &internalMessage{
		from:   from,
		to:     to,
		value:  value,
		bounce: true,
		body:   body,
	}
	for _, opt := range opts {
		opt(msg)
	}
	if err := vm.vectors.before(vm); err != nil {
		return nil, err
	}

	vm.invocations = nil
	vm.pending = append(vm.pending, msg)
	if err := vm.Run(); err != nil {
		return nil, err
	}
	if len(vm.invocations) == 0 {
		return nil, xerrors.Errorf("message to %v was not delivered", to)
	}
	root := vm.invocations[0]
	if err := vm.vectors.after(vm, root); err != nil {
		return nil, err
	}
	return root, nil
}

// Run delivers queued messages in waves until none are left.
func (vm *VM) Run() error {
	for wave := 0; len(vm.pending) > 0; wave++ {
		if wave >= MaxWaves {
			return xerrors.Errorf("delivery did not settle after %d waves, %d messages pending", MaxWaves, len(vm.pending))
		}
		if err := vm.deliverWave(); err != nil {
			return err
		}
	}
	_, err := vm.checkpoint()
	return err
}

type recipientQueue struct {
	to         abi.Address
	msgs       []*internalMessage
	deliveries []*delivery
}

// delivery is the outcome of processing one message.
type delivery struct {
	inv      *Invocation
	receipt  Receipt
	outbound []*internalMessage
	logs     []string
}

// deliverWave runs every pending message. Recipients proceed concurrently;
// each recipient consumes its messages in the order they were sent.
func (vm *VM) deliverWave() error {
	var queues []*recipientQueue
	byKey := make(map[string]*recipientQueue)
	for _, m := range vm.pending {
		q, ok := byKey[m.to.Key()]
		if !ok {
			q = &recipientQueue{to: m.to}
			byKey[m.to.Key()] = q
			queues = append(queues, q)
		}
		q.msgs = append(q.msgs, m)
	}
	vm.pending = nil

	for _, q := range queues {
		for _, m := range q.msgs {
			vm.lt++
			m.lt = vm.lt
			m.id = messageID(m)
		}
	}

	g, ctx := errgroup.WithContext(vm.ctx)
	for _, q := range queues {
		q := q
		g.Go(func() error {
			for _, m := range q.msgs {
				if err := ctx.Err(); err != nil {
					return err
				}
				d, err := vm.deliver(m)
				if err != nil {
					return xerrors.Errorf("delivering %x to %v: %w", m.id, m.to, err)
				}
				q.deliveries = append(q.deliveries, d)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, q := range queues {
		for _, d := range q.deliveries {
			if parent := d.inv.Msg.parent; parent != nil {
				parent.SubInvocations = append(parent.SubInvocations, d.inv)
			} else {
				vm.invocations = append(vm.invocations, d.inv)
			}
			if err := vm.receipts.AppendContinuous(&d.receipt); err != nil {
				return err
			}
			vm.logs = append(vm.logs, d.logs...)
			vm.pending = append(vm.pending, d.outbound...)
		}
	}
	return nil
}

// deliver applies one message to its recipient. Only the recipient's record
// is written, so deliveries to distinct recipients do not interfere.
func (vm *VM) deliver(m *internalMessage) (*delivery, error) {
	d := &delivery{inv: &Invocation{Msg: m}}

	act, found, err := vm.GetActor(m.to)
	if err != nil {
		return nil, err
	}
	if !found {
		act = vm.uninitActor()
	}
	prior := *act

	code := exitcode.Ok
	var ic *invocationContext
	if !act.Initialized() && m.init != nil {
		code, err = vm.activate(act, m)
		if err != nil {
			return nil, err
		}
	}
	if code.IsSuccess() {
		act.Balance = big.Add(act.Balance, m.value)
		if act.Initialized() {
			impl, ok := vm.actorImpls[act.Code]
			if !ok {
				return nil, xerrors.Errorf("actor implementation not found for code %v", act.Code)
			}
			ic = newInvocationContext(vm, m, act, impl)
			if code, err = ic.invoke(); err != nil {
				return nil, err
			}
			d.inv.AbortMsg = ic.abortMsg
			d.logs = ic.logs
		} else if isAction(m) {
			code = exitcode.SysErrInvalidReceiver
			d.inv.AbortMsg = "recipient is not deployed"
		}
	}
	d.inv.Exitcode = code

	if code.IsSuccess() {
		if ic != nil {
			act.Head = ic.head
			act.Balance = big.Sub(act.Balance, ic.sent)
			d.outbound = ic.outbound
		}
		act.LastLT = m.lt
		if err := vm.setActor(m.to, act); err != nil {
			return nil, err
		}
	} else {
		restored := prior
		restored.LastLT = m.lt
		if m.bounce && !m.bounced {
			body, err := messages.BounceBody(m.body)
			if err != nil {
				return nil, err
			}
			d.outbound = []*internalMessage{{
				from:    m.to,
				to:      m.from,
				value:   m.value,
				bounced: true,
				body:    body,
				parent:  d.inv,
			}}
		} else {
			restored.Balance = big.Add(restored.Balance, m.value)
		}
		if found || restored.Balance.GreaterThan(big.Zero()) {
			if err := vm.setActor(m.to, &restored); err != nil {
				return nil, err
			}
		}
		log.Debugf("message %x to %v failed with %v: %s", m.id, m.to, code, d.inv.AbortMsg)
	}

	for _, out := range d.outbound {
		out.parent = d.inv
	}
	d.receipt = newReceipt(m, code)
	return d, nil
}

// activate deploys the recipient from the state init a message carries.
func (vm *VM) activate(act *Actor, m *internalMessage) (exitcode.ExitCode, error) {
	addr, err := m.init.Address(m.to.Workchain())
	if err != nil || addr != m.to {
		return exitcode.SysErrorIllegalArgument, nil
	}
	codeID, err := builtin.CodeIDFromCell(m.init.Code)
	if err != nil {
		return exitcode.SysErrorIllegalArgument, nil
	}
	if _, ok := vm.actorImpls[codeID]; !ok {
		return exitcode.SysErrInvalidReceiver, nil
	}
	head, err := vm.putCell(m.init.Data)
	if err != nil {
		return exitcode.Ok, err
	}
	act.Code = codeID
	act.Head = head
	log.Debugf("activated %s at %v", builtin.ActorNameByCode(codeID), m.to)
	return exitcode.Ok, nil
}

// isAction reports whether a message asks for more than a plain top-up.
func isAction(m *internalMessage) bool {
	return m.bounced || (m.body != nil && m.body.BitLen() >= 32)
}

// Invocations returns the trace of the last applied message.
func (vm *VM) Invocations() []*Invocation {
	return vm.invocations
}

func (vm *VM) Logs() []string {
	return vm.logs
}

// Receipts lists the outcome of every delivered message in delivery order.
func (vm *VM) Receipts() ([]Receipt, error) {
	var out []Receipt
	var r Receipt
	err := vm.receipts.ForEach(&r, func(int64) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

// ReceiptsRoot flushes the receipts log and returns its root.
func (vm *VM) ReceiptsRoot() (cid.Cid, error) {
	return vm.receipts.Root()
}
