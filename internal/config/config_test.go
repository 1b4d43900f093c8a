package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readiness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
systemDrive: "D:\\"
output: C:\ProgramData\readiness\result.json
pause: true
logLevel: debug
server:
  addr: 0.0.0.0:9090
  interval: 1m
  cacheTTL: 10s
  allowedIPs: ["10.0.0.5"]
auth:
  tokenExpiry: 24h
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, `D:\`, cfg.SystemDrive)
	require.True(t, cfg.Pause)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "0.0.0.0:9090", cfg.Server.Addr)
	require.Equal(t, time.Minute, cfg.Server.Interval)
	require.Equal(t, 10*time.Second, cfg.Server.CacheTTL)
	require.Equal(t, 288, cfg.Server.HistorySize)
	require.Equal(t, []string{"10.0.0.5"}, cfg.Server.AllowedIPs)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiry)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad log level", "logLevel: chatty\n"},
		{"bad ip", "server:\n  allowedIPs: [\"not-an-ip\"]\n"},
		{"bad trusted proxy", "server:\n  trustedProxies: [\"proxy.local\"]\n"},
		{"interval too short", "server:\n  interval: 10ms\n"},
		{"bad addr", "server:\n  addr: nowhere\n"},
		{"not yaml", "logLevel: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
