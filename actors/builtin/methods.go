package builtin

import (
	"github.com/jetton-project/jetton-actors/actors/abi"
)

type walletMethods struct {
	Transfer         abi.Op
	InternalTransfer abi.Op
	Burn             abi.Op
}

var MethodsWallet = walletMethods{0x0f8a7ea5, 0x178d4519, 0x595f07bc}

type minterMethods struct {
	Mint                 abi.Op
	BurnNotification     abi.Op
	ChangeAdmin          abi.Op
	ChangeContent        abi.Op
	ProvideWalletAddress abi.Op
}

var MethodsMinter = minterMethods{0x15, 0x7bdd97de, 3, 4, 0x2c76b973}

// Notifications addressed to owners and response destinations.
type accountMethods struct {
	TransferNotification abi.Op
	Excesses             abi.Op
	TakeWalletAddress    abi.Op
}

var MethodsAccount = accountMethods{0x7362d09c, 0xd53276db, 0xd1735400}
