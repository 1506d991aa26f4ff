package vm

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/sha256-simd"

	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

//
// Test vector generation utilities
//

// Setting this variable to a directory makes every applied message write a
// vector of its pre-state, message and outcome there.
const vectorDirEnv = "JETTON_ACTORS_VECTORS"

type testVector struct {
	PreStateRoot  string           `json:"pre_state_root"`
	PostStateRoot string           `json:"post_state_root"`
	ReceiptsRoot  string           `json:"receipts_root"`
	From          string           `json:"from"`
	To            string           `json:"to"`
	Value         string           `json:"value"`
	Body          string           `json:"body_boc"`
	Trace         []vectorDelivery `json:"trace"`
}

type vectorDelivery struct {
	To       string `json:"to"`
	Op       string `json:"op"`
	Bounced  bool   `json:"bounced,omitempty"`
	ExitCode int64  `json:"exit_code"`
}

type vectorGen struct {
	dir    string
	vector testVector
}

func newVectorGen() *vectorGen {
	return &vectorGen{dir: os.Getenv(vectorDirEnv)}
}

func (g *vectorGen) enabled() bool {
	return g.dir != ""
}

func (g *vectorGen) before(v *VM) error {
	if !g.enabled() {
		return nil
	}
	root, err := v.checkpoint()
	if err != nil {
		return err
	}
	g.vector = testVector{PreStateRoot: root.String()}
	return nil
}

func (g *vectorGen) after(v *VM, root *Invocation) error {
	if !g.enabled() {
		return nil
	}
	receipts, err := v.ReceiptsRoot()
	if err != nil {
		return err
	}
	g.vector.PostStateRoot = v.StateRoot().String()
	g.vector.ReceiptsRoot = receipts.String()
	g.vector.From = root.Msg.from.String()
	g.vector.To = root.Msg.to.String()
	g.vector.Value = root.Msg.value.String()
	g.vector.Body = ""
	if root.Msg.body != nil {
		body, err := cell.ToBOC(root.Msg.body, true)
		if err != nil {
			return err
		}
		g.vector.Body = hex.EncodeToString(body)
	}
	g.vector.Trace = nil
	walkInvocations(root, func(inv *Invocation) {
		op, _ := inv.Msg.Op()
		g.vector.Trace = append(g.vector.Trace, vectorDelivery{
			To:       inv.Msg.to.String(),
			Op:       op.String(),
			Bounced:  inv.Msg.bounced,
			ExitCode: int64(inv.Exitcode),
		})
	})

	vectorBytes, err := json.MarshalIndent(&g.vector, "", "  ")
	if err != nil {
		return err
	}
	act, _, err := v.GetActor(root.Msg.to)
	if err != nil {
		return err
	}
	name := filepath.Base(builtin.ActorNameByCode(act.Code))
	h := sha256.Sum256(vectorBytes)
	fname := fmt.Sprintf("%x-%s-%s.json", h[:8], name, root.Msg.to.Friendly(true, true))
	return writeVector(g.dir, fname, vectorBytes)
}

// walkInvocations visits a trace depth first.
func walkInvocations(inv *Invocation, f func(*Invocation)) {
	f(inv)
	for _, sub := range inv.SubInvocations {
		walkInvocations(sub, f)
	}
}

func writeVector(dir, fname string, vectorBytes []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fname), vectorBytes, 0644)
}
