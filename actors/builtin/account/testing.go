package account

import (
	"unicode/utf8"

	"github.com/jetton-project/jetton-actors/actors/builtin"
)

type StateSummary struct {
	Notifications uint64
}

// Checks internal invariants of account state.
func CheckStateInvariants(st *State) (*StateSummary, *builtin.MessageAccumulator) {
	acc := &builtin.MessageAccumulator{}
	acc.Require(utf8.ValidString(st.Label), "account label %q is not valid UTF-8", st.Label)

	return &StateSummary{
		Notifications: st.Notifications,
	}, acc
}
