package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	HTTP struct {
		Port string `yaml:"port" env:"SAMPLE_HTTP_PORT"`
	} `yaml:"http"`
	Session struct {
		TTL    time.Duration `yaml:"ttl"`
		Secure bool          `yaml:"secure"`
	} `yaml:"session"`
	Provincias []string `yaml:"provincias" env:"SAMPLE_PROVINCIAS"`
	Ignored    string   `env:"-"`
}

func TestLoadConfigRejectsNonPointer(t *testing.T) {
	require.Error(t, LoadConfig(nil))
	require.Error(t, LoadConfig(sample{}))
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: \"9000\"\nsession:\n  ttl: 2h\n  secure: false\nprovincias: [Alicante]\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("SESSION_TTL", "8h")
	t.Setenv("SAMPLE_PROVINCIAS", "Alicante, Valencia ,Castellón")
	t.Setenv("IGNORED", "nope")

	var cfg sample
	require.NoError(t, LoadConfig(&cfg))

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"Alicante", "Valencia", "Castellón"}, cfg.Provincias)
	assert.Empty(t, cfg.Ignored)
}

func TestLoadConfigBadValue(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SESSION_TTL", "eight hours")

	var cfg sample
	err := LoadConfig(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
}
