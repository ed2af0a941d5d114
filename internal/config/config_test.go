package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, ":9000", cfg.GRPCAddr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, cfg.ConfigCacheTTL)
	assert.Equal(t, 20.0, cfg.RateLimit.RPS)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.True(t, cfg.Seed)
	assert.False(t, cfg.Tracing)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestLoad_Precedence(t *testing.T) {
	dir := chdirTemp(t)

	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
addr: ":7000"
grpc_addr: ":7001"
db: "/tmp/from-file.db"
log:
  format: text
rate_limit:
  burst: 5
`), 0o600))

	t.Setenv("BIOWATCH_GRPC_ADDR", ":7100")
	t.Setenv("BIOWATCH_LOG_FILE", "/tmp/biowatch.log")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.Bool("debug", false, "")
	flags.Int("rate-limit-burst", 0, "")
	require.NoError(t, flags.Parse([]string{"--db=/tmp/from-flag.db", "--debug"}))

	cfg, err := Load(file, flags)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr, "file overrides default")
	assert.Equal(t, ":7100", cfg.GRPCAddr, "env overrides file")
	assert.Equal(t, "/tmp/from-flag.db", cfg.DBPath, "flag overrides file")
	assert.True(t, cfg.Debug)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "/tmp/biowatch.log", cfg.Log.File)
	assert.Equal(t, 5, cfg.RateLimit.Burst, "unset flag keeps the file value")
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := chdirTemp(t)
	file := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(file, []byte("addr: [unclosed"), 0o600))

	_, err := Load(file, nil)
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownLogFormat(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BIOWATCH_LOG_FORMAT", "xml")

	_, err := Load("", nil)
	assert.ErrorContains(t, err, "unsupported log format")
}

func TestFlagKey(t *testing.T) {
	tests := map[string]string{
		"addr":             "addr",
		"grpc-addr":        "grpc_addr",
		"static-dir":       "static_dir",
		"log-format":       "log.format",
		"log-max-size-mb":  "log.max_size_mb",
		"rate-limit-rps":   "rate_limit.rps",
		"config-cache-ttl": "config_cache_ttl",
	}
	for in, want := range tests {
		assert.Equal(t, want, flagKey(in), in)
	}
}
