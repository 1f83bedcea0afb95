package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validConfig = `
ListenAddress = "127.0.0.1:9090"
DBPath = "/tmp/test.db"
JWTSecret = "secret"
OwnersMultisig = "0xa100000000000000000000000000000000000000"
Administrators = ["0xa200000000000000000000000000000000000000"]
FactoryAddress = "0xa300000000000000000000000000000000000000"
TreasuryAddress = "0xa400000000000000000000000000000000000000"
EarningsPoolAddress = "0xc100000000000000000000000000000000000000"
ReferralProgramAddress = "0xc200000000000000000000000000000000000000"
BuyBackFundAddress = "0xc300000000000000000000000000000000000000"
ReferralRewardBps = 500

[[Assets]]
Symbol = "USDT"
Rate = "1/1"
Decimals = 6

[[Assets]]
Symbol = "USDC"
Rate = "0.999"
Decimals = 6
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", cfg.ListenAddress)
	require.Len(t, cfg.Assets, 2)
	require.Equal(t, uint32(500), cfg.ReferralRewardBps)

	rate, err := cfg.Assets[1].ParseRate()
	require.NoError(t, err)
	require.Equal(t, "999/1000", rate.String())

	addr, err := ParseAddress(cfg.OwnersMultisig)
	require.NoError(t, err)
	require.Equal(t, byte(0xA1), addr[0])
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8080", cfg.ListenAddress)
	require.FileExists(t, path)
}

func TestValidateRejectsBadAddress(t *testing.T) {
	body := validConfig + "\n"
	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)

	cfg.TreasuryAddress = "0x1234"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsExcessiveBps(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	cfg.ReferralRewardBps = 10_001
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingAssets(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	cfg.Assets = nil
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadRate(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	cfg.Assets[0].Rate = "not-a-rate"
	require.Error(t, cfg.Validate())
}

func TestParseAddressRejectsGarbage(t *testing.T) {
	_, err := ParseAddress("0xzz00000000000000000000000000000000000000")
	require.Error(t, err)
	_, err = ParseAddress("")
	require.Error(t, err)
}
