package bank

import (
	"encoding/hex"
	"fmt"

	"github.com/BurntSushi/toml"

	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
)

// Config is the bank's genesis description. The zero value is a usable
// default: mainnet rent parameters and an empty ledger.
type Config struct {
	Rent    RentConfig       `toml:"rent"`
	Genesis []GenesisAccount `toml:"genesis"`
}

type RentConfig struct {
	LamportsPerByteYear uint64  `toml:"lamports_per_byte_year"`
	ExemptionThreshold  float64 `toml:"exemption_threshold"`
}

// GenesisAccount pre-installs one account at bank construction.
type GenesisAccount struct {
	Address  string `toml:"address"`
	Lamports uint64 `toml:"lamports"`
	Owner    string `toml:"owner"`
	DataHex  string `toml:"data_hex"`
}

// LoadConfig reads a TOML genesis file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading bank config: %w", err)
	}
	return cfg, nil
}

func (c Config) rent() program.Rent {
	if c.Rent.LamportsPerByteYear == 0 && c.Rent.ExemptionThreshold == 0 {
		return program.DefaultRent()
	}
	return program.Rent{
		LamportsPerByteYear: c.Rent.LamportsPerByteYear,
		ExemptionThreshold:  c.Rent.ExemptionThreshold,
	}
}

func (g GenesisAccount) account() (pubkey.Pubkey, *stored, error) {
	addr, err := pubkey.FromBase58(g.Address)
	if err != nil {
		return pubkey.Zero, nil, fmt.Errorf("genesis account address: %w", err)
	}
	owner := pubkey.Zero
	if g.Owner != "" {
		owner, err = pubkey.FromBase58(g.Owner)
		if err != nil {
			return pubkey.Zero, nil, fmt.Errorf("genesis account %s owner: %w", g.Address, err)
		}
	}
	acc := &stored{lamports: g.Lamports, owner: owner}
	if g.DataHex != "" {
		raw, err := hex.DecodeString(g.DataHex)
		if err != nil {
			return pubkey.Zero, nil, fmt.Errorf("genesis account %s data: %w", g.Address, err)
		}
		acc.data = alignedCopy(raw)
	}
	return addr, acc, nil
}
