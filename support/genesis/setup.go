package genesis

import (
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin"
	"github.com/jetton-project/jetton-actors/actors/builtin/content"
	"github.com/jetton-project/jetton-actors/actors/builtin/minter"
	"github.com/jetton-project/jetton-actors/actors/builtin/wallet"
	"github.com/jetton-project/jetton-actors/actors/cell"
	"github.com/jetton-project/jetton-actors/support/vm"
)

var log = logging.Logger("jetton/genesis")

// Jetton is what Setup deployed.
type Jetton struct {
	Minter abi.Address
	// Wallet of the admin holding the initial supply, absent when nothing
	// was minted at genesis.
	AdminWallet abi.Address
}

// BuildContent builds the metadata blob the config describes.
func (cfg *Config) BuildContent() (*cell.Cell, error) {
	enc, err := content.ParseEncoding(cfg.Content.Encoding)
	if err != nil {
		return nil, err
	}
	return content.Build(content.Fields{
		Name:        cfg.Content.Name,
		Description: cfg.Content.Description,
		Symbol:      cfg.Content.Symbol,
		Decimals:    cfg.Content.Decimals,
		Image:       cfg.Content.Image,
	}, enc)
}

// Setup deploys the minter described by cfg, and the admin's wallet when the
// config starts with a non-zero supply.
func Setup(v *vm.VM, cfg *Config) (*Jetton, error) {
	if err := cfg.Validate(); err != nil {
		return nil, xerrors.Errorf("invalid genesis config: %w", err)
	}
	blob, err := cfg.BuildContent()
	if err != nil {
		return nil, xerrors.Errorf("failed to build content: %w", err)
	}
	supply, err := parseAmount("total_supply", cfg.Minter.TotalSupply)
	if err != nil {
		return nil, err
	}
	tonBalance, err := parseAmount("ton_balance", cfg.Minter.TonBalance)
	if err != nil {
		return nil, err
	}

	st := minter.ConstructState(cfg.Minter.Admin, blob, builtin.WalletCode, cfg.Minter.CloseAfterMint)
	st.TotalSupply = supply
	st.Mintable = cfg.Minter.Mintable
	data, err := cell.Marshal(st)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal minter state: %w", err)
	}
	minterAddr, err := v.DeployInWorkchain(cfg.Workchain, builtin.MinterCode, data, tonBalance)
	if err != nil {
		return nil, xerrors.Errorf("failed to deploy minter: %w", err)
	}
	out := &Jetton{Minter: minterAddr}

	if supply.IsZero() {
		log.Infow("jetton deployed", "minter", minterAddr, "symbol", cfg.Content.Symbol)
		return out, nil
	}

	init, err := wallet.StateInit(cfg.Minter.Admin, minterAddr, builtin.WalletCode)
	if err != nil {
		return nil, err
	}
	ws := wallet.ConstructState(cfg.Minter.Admin, minterAddr, builtin.WalletCode)
	ws.Balance = supply
	storage, err := cell.Marshal(ws)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal admin wallet state: %w", err)
	}
	if out.AdminWallet, err = v.DeployWithStorage(cfg.Workchain, init, storage, abi.NewTokenAmount(0)); err != nil {
		return nil, xerrors.Errorf("failed to deploy admin wallet: %w", err)
	}
	log.Infow("jetton deployed", "minter", minterAddr, "symbol", cfg.Content.Symbol, "supply", supply, "admin_wallet", out.AdminWallet)
	return out, nil
}
