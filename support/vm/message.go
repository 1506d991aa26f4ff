package vm

import (
	"encoding/binary"

	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/minio/blake2b-simd"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/actors/runtime"
)

type internalMessage struct {
	id      []byte
	from    abi.Address
	to      abi.Address
	value   abi.TokenAmount
	bounce  bool
	bounced bool
	init    *abi.StateInit
	body    *cell.Cell
	lt      uint64
	// Invocation that sent the message, nil for external messages.
	parent *Invocation
}

var _ runtime.Message = (*internalMessage)(nil)

// Caller implements runtime.Message.
func (m *internalMessage) Caller() abi.Address {
	return m.from
}

// Receiver implements runtime.Message.
func (m *internalMessage) Receiver() abi.Address {
	return m.to
}

// ValueReceived implements runtime.Message.
func (m *internalMessage) ValueReceived() abi.TokenAmount {
	return m.value
}

// Bounced implements runtime.Message.
func (m *internalMessage) Bounced() bool {
	return m.bounced
}

func (m *internalMessage) ID() []byte {
	return m.id
}

func (m *internalMessage) Body() *cell.Cell {
	return m.body
}

func (m *internalMessage) Init() *abi.StateInit {
	return m.init
}

func (m *internalMessage) LogicalTime() uint64 {
	return m.lt
}

// Op returns the op the body leads with, or the bounce marker for a returned
// message. Plain top-ups have no op.
func (m *internalMessage) Op() (abi.Op, bool) {
	if m.bounced {
		return abi.OpBounced, true
	}
	if m.body == nil || m.body.BitLen() < 32 {
		return 0, false
	}
	op, err := m.body.BeginParse().PreloadUint(32)
	if err != nil {
		return 0, false
	}
	return abi.Op(op), true
}

// messageID hashes the routing fields, logical time and body of a message.
func messageID(m *internalMessage) []byte {
	h := blake2b.New256()
	h.Write(m.from.Bytes())
	h.Write(m.to.Bytes())
	h.Write([]byte(m.value.String()))
	var lt [8]byte
	binary.BigEndian.PutUint64(lt[:], m.lt)
	h.Write(lt[:])
	if m.body != nil {
		bodyHash := m.body.Hash()
		h.Write(bodyHash[:])
	}
	return h.Sum(nil)
}

// Receipt records the outcome of one delivered message.
type Receipt struct {
	MessageID   []byte
	From        abi.Address
	To          abi.Address
	Op          uint64
	Value       abi.TokenAmount
	ExitCode    exitcode.ExitCode
	Bounced     bool
	LogicalTime uint64
}

func newReceipt(m *internalMessage, code exitcode.ExitCode) Receipt {
	op, _ := m.Op()
	return Receipt{
		MessageID:   m.id,
		From:        m.from,
		To:          m.to,
		Op:          uint64(op),
		Value:       m.value,
		ExitCode:    code,
		Bounced:     m.bounced,
		LogicalTime: m.lt,
	}
}

// Invocation is a delivered message and the deliveries of the messages it sent.
type Invocation struct {
	Msg            *internalMessage
	Exitcode       exitcode.ExitCode
	AbortMsg       string
	SubInvocations []*Invocation
}
