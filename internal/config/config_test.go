package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  name: shop-backoffice
  log_level: debug
server:
  port: "9090"
storage:
  driver: mysql
  mysql:
    dsn: "user:pass@tcp(localhost:3306)/shop?parseTime=true"
orders:
  settle_payment_on_completion: false
stock:
  low_stock_threshold: 3
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "shop-backoffice", cfg.App.Name)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, DriverMySQL, cfg.Storage.Driver)
	assert.False(t, cfg.Orders.SettlePaymentOnCompletion)
	assert.Equal(t, 3, cfg.Stock.LowStockThreshold)
	assert.Equal(t, 40, cfg.Server.RateLimit.Burst)
	assert.Equal(t, "backoffice.orders", cfg.Redis.Channel)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BACKOFFICE_SERVER_PORT", "7070")
	t.Setenv("BACKOFFICE_ORDERS_SETTLE_PAYMENT_ON_COMPLETION", "true")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.True(t, cfg.Orders.SettlePaymentOnCompletion)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.True(t, cfg.Orders.SettlePaymentOnCompletion)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Storage.Driver = "postgres"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = DriverMySQL
	cfg.Storage.MySQL.DSN = ""
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = DriverMemory
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg.Redis.Enabled = false
	cfg.Stock.LowStockThreshold = -1
	assert.Error(t, cfg.Validate())
}
