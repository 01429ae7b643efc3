package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.True(t, cfg.AuthEnabled)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
	assert.Equal(t, 48, cfg.PrinterWidth)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("PORT", "9090")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("PRINTER_TYPE", "network")
	t.Setenv("PRINTER_ADDRESS", "10.0.0.5:9100")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.AuthEnabled)
	assert.Equal(t, "UTC", cfg.Location().String())
	assert.Equal(t, "10.0.0.5:9100", cfg.PrinterAddress)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 0.0001)
}

func TestValidate(t *testing.T) {
	cfg := &Config{AuthEnabled: true, Timezone: "UTC"}
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg = &Config{Timezone: "Marte/Olympus"}
	assert.ErrorContains(t, cfg.Validate(), "TIMEZONE")

	cfg = &Config{Timezone: "UTC", PrinterType: "bluetooth"}
	assert.ErrorContains(t, cfg.Validate(), "PRINTER_TYPE")

	cfg = &Config{Timezone: "UTC", PrinterType: "usb"}
	assert.NoError(t, cfg.Validate())
}

func TestSMTPEnabled(t *testing.T) {
	assert.False(t, (&Config{SMTPHost: "smtp.local"}).SMTPEnabled())
	assert.True(t, (&Config{SMTPHost: "smtp.local", RelatorioEmail: "gerente@x.com"}).SMTPEnabled())
}
