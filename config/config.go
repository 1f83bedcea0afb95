package config

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// AssetConfig declares one accepted settlement asset and its oracle quote.
type AssetConfig struct {
	Symbol   string `toml:"Symbol"`
	Rate     string `toml:"Rate"`
	Decimals uint8  `toml:"Decimals"`
}

// Config is the objectd service configuration.
type Config struct {
	ListenAddress          string        `toml:"ListenAddress"`
	DBPath                 string        `toml:"DBPath"`
	JWTSecret              string        `toml:"JWTSecret"`
	OwnersMultisig         string        `toml:"OwnersMultisig"`
	Administrators         []string      `toml:"Administrators"`
	FactoryAddress         string        `toml:"FactoryAddress"`
	TreasuryAddress        string        `toml:"TreasuryAddress"`
	EarningsPoolAddress    string        `toml:"EarningsPoolAddress"`
	ReferralProgramAddress string        `toml:"ReferralProgramAddress"`
	BuyBackFundAddress     string        `toml:"BuyBackFundAddress"`
	ReferralRewardBps      uint32        `toml:"ReferralRewardBps"`
	RateLimitPerMinute     int           `toml:"RateLimitPerMinute"`
	Assets                 []AssetConfig `toml:"Assets"`
}

// Load reads the configuration file, creating a commented default when none
// exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = "127.0.0.1:8080"
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = "brickshare.db"
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = 120
	}
	if c.Administrators == nil {
		c.Administrators = []string{}
	}
}

// Validate checks address syntax, oracle rates, and the referral rate.
func (c *Config) Validate() error {
	required := map[string]string{
		"OwnersMultisig":         c.OwnersMultisig,
		"FactoryAddress":         c.FactoryAddress,
		"TreasuryAddress":        c.TreasuryAddress,
		"EarningsPoolAddress":    c.EarningsPoolAddress,
		"ReferralProgramAddress": c.ReferralProgramAddress,
		"BuyBackFundAddress":     c.BuyBackFundAddress,
	}
	for field, value := range required {
		if _, err := ParseAddress(value); err != nil {
			return fmt.Errorf("config: %s: %w", field, err)
		}
	}
	for _, admin := range c.Administrators {
		if _, err := ParseAddress(admin); err != nil {
			return fmt.Errorf("config: Administrators: %w", err)
		}
	}
	if c.ReferralRewardBps > 10_000 {
		return fmt.Errorf("config: ReferralRewardBps %d exceeds 10000", c.ReferralRewardBps)
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("config: at least one asset must be configured")
	}
	for _, asset := range c.Assets {
		if strings.TrimSpace(asset.Symbol) == "" {
			return fmt.Errorf("config: asset symbol must not be empty")
		}
		rate, err := asset.ParseRate()
		if err != nil {
			return err
		}
		if rate.Sign() <= 0 {
			return fmt.Errorf("config: asset %s rate must be positive", asset.Symbol)
		}
	}
	return nil
}

// ParseRate parses the asset's quote as a rational number. Both decimal
// ("1.0") and fractional ("1/1") notation are accepted.
func (a AssetConfig) ParseRate() (*big.Rat, error) {
	rate, ok := new(big.Rat).SetString(strings.TrimSpace(a.Rate))
	if !ok {
		return nil, fmt.Errorf("config: asset %s has invalid rate %q", a.Symbol, a.Rate)
	}
	return rate, nil
}

// ParseAddress decodes a 0x-prefixed 20-byte hex address.
func ParseAddress(value string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if len(trimmed) != 40 {
		return addr, fmt.Errorf("address %q must be 20 hex bytes", value)
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("address %q is not valid hex", value)
	}
	copy(addr[:], raw)
	return addr, nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress:      "127.0.0.1:8080",
		DBPath:             "brickshare.db",
		RateLimitPerMinute: 120,
		Administrators:     []string{},
		Assets: []AssetConfig{
			{Symbol: "USDT", Rate: "1/1", Decimals: 6},
		},
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
