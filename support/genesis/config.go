// Package genesis configures and deploys a jetton at the start of a
// simulation.
package genesis

import (
	"io"
	"os"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"github.com/jetton-project/jetton-actors/actors/abi"
	"github.com/jetton-project/jetton-actors/actors/builtin/content"
)

// Config describes the jetton deployed at genesis.
type Config struct {
	Workchain int8           `toml:"workchain"`
	Minter    *MinterConfig  `toml:"minter"`
	Content   *ContentConfig `toml:"content"`
}

type MinterConfig struct {
	Admin abi.Address `toml:"admin"`
	// Jettons credited to the admin's wallet at genesis, in base units.
	TotalSupply    string `toml:"total_supply"`
	Mintable       bool   `toml:"mintable"`
	CloseAfterMint bool   `toml:"close_after_mint"`
	// Native balance the minter starts with.
	TonBalance string `toml:"ton_balance"`
}

type ContentConfig struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Symbol      string `toml:"symbol"`
	Decimals    uint8  `toml:"decimals"`
	Image       string `toml:"image"`
	Encoding    string `toml:"encoding"`
}

// NewDefaultConfig returns a basechain jetton with open minting and nothing
// minted. The admin is left unset.
func NewDefaultConfig() *Config {
	return &Config{
		Workchain: 0,
		Minter: &MinterConfig{
			TotalSupply: "0",
			Mintable:    true,
			TonBalance:  "0",
		},
		Content: &ContentConfig{
			Decimals: 9,
			Encoding: content.EncodingStandard.String(),
		},
	}
}

// ReadFile reads a config file from disk over the defaults.
func ReadFile(file string) (*Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close() // nolint: errcheck

	return Decode(f)
}

// Decode reads a TOML config over the defaults and validates it.
func Decode(r io.Reader) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.DecodeReader(r, cfg); err != nil {
		return nil, xerrors.Errorf("failed to decode genesis config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteFile writes the config to the given filepath.
func (cfg *Config) WriteFile(file string) error {
	f, err := os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	if err := toml.NewEncoder(f).Encode(*cfg); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// Validate reports every problem with the config at once.
func (cfg *Config) Validate() error {
	var result *multierror.Error
	if cfg.Workchain != 0 && cfg.Workchain != -1 {
		result = multierror.Append(result, xerrors.Errorf("workchain %d is neither basechain nor masterchain", cfg.Workchain))
	}

	if cfg.Minter == nil {
		result = multierror.Append(result, xerrors.New("missing [minter] section"))
	} else {
		if cfg.Minter.Admin.Empty() {
			result = multierror.Append(result, xerrors.New("minter admin is not set"))
		}
		supply, err := parseAmount("total_supply", cfg.Minter.TotalSupply)
		if err != nil {
			result = multierror.Append(result, err)
		} else if supply.GreaterThan(big.Zero()) && cfg.Minter.Admin.Workchain() != cfg.Workchain {
			result = multierror.Append(result, xerrors.Errorf("admin %v must be in workchain %d to hold the initial supply", cfg.Minter.Admin, cfg.Workchain))
		}
		if _, err := parseAmount("ton_balance", cfg.Minter.TonBalance); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if cfg.Content == nil {
		result = multierror.Append(result, xerrors.New("missing [content] section"))
	} else {
		for key, v := range map[string]string{
			content.KeyName:        cfg.Content.Name,
			content.KeyDescription: cfg.Content.Description,
			content.KeySymbol:      cfg.Content.Symbol,
			content.KeyImage:       cfg.Content.Image,
		} {
			if !utf8.ValidString(v) {
				result = multierror.Append(result, xerrors.Errorf("content %s: %w", key, content.ErrInvalidField))
			}
		}
		if _, err := content.ParseEncoding(cfg.Content.Encoding); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func parseAmount(field, s string) (abi.TokenAmount, error) {
	if s == "" {
		return big.Zero(), nil
	}
	v, err := big.FromString(s)
	if err != nil {
		return big.Zero(), xerrors.Errorf("%s %q: %w", field, s, err)
	}
	if v.LessThan(big.Zero()) {
		return big.Zero(), xerrors.Errorf("%s %s is negative", field, v)
	}
	return v, nil
}
