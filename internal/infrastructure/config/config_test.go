package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "biasharahub-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "0.10", cfg.Wallet.CommissionRate)
	assert.Equal(t, "10", cfg.Wallet.MinimumPayout)
	assert.False(t, cfg.Mpesa.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Mpesa.HTTPTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BIASHARA_APP_PORT", "9090")
	t.Setenv("BIASHARA_WALLET_COMMISSION_RATE", "0.15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "0.15", cfg.Wallet.CommissionRate)
}

func TestValidate(t *testing.T) {
	t.Run("production requires secrets", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.App.Env = "production"
		assert.Error(t, cfg.validate())
	})

	t.Run("mpesa enabled requires credentials", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Mpesa.Enabled = true
		assert.Error(t, cfg.validate())

		cfg.Mpesa.ConsumerKey = "key"
		cfg.Mpesa.ConsumerSecret = "secret"
		cfg.Mpesa.ShortCode = "174379"
		cfg.Mpesa.CallbackBaseURL = "https://example.com"
		assert.NoError(t, cfg.validate())
	})
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "biasharahub", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=biasharahub sslmode=disable", d.DSN())
}
