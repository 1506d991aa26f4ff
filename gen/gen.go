package main

import (
	gen "github.com/whyrusleeping/cbor-gen"

	"github.com/jetton-project/jetton-actors/support/vm"
)

// Actor storage and message bodies are cells with hand-written layouts; only
// the records the simulation substrate keeps in its IPLD store are CBOR.
func main() {
	if err := gen.WriteTupleEncodersToFile("./support/vm/cbor_gen.go", "vm",
		// state tree
		vm.Actor{},
		// receipts log
		vm.Receipt{},
	); err != nil {
		panic(err)
	}
}
