package exported

import (
	"github.com/jetton-project/jetton-actors/actors/builtin/account"
	"github.com/jetton-project/jetton-actors/actors/builtin/minter"
	"github.com/jetton-project/jetton-actors/actors/builtin/wallet"
	"github.com/jetton-project/jetton-actors/actors/runtime"
)

func BuiltinActors() []runtime.VMActor {
	return []runtime.VMActor{
		account.Actor{},
		minter.Actor{},
		wallet.Actor{},
	}
}
