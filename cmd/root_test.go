package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"readiness/internal/logging"
	"readiness/internal/models"
	"readiness/internal/services"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func writeFacts(t *testing.T, facts models.HostFacts) string {
	t.Helper()
	data, err := json.Marshal(facts)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "facts.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func capableFacts() models.HostFacts {
	return models.HostFacts{
		Processor:  &models.ProcessorInfo{MaxClockSpeedMHz: 2112, LogicalCores: 8, Manufacturer: "GenuineIntel", Caption: "Intel64 Family 6 Model 142 Stepping 12", AddressWidth: 64},
		Memory:     &models.MemoryInfo{TotalBytes: 16 * models.GB},
		Storage:    &models.StorageInfo{Path: `C:\`, FreeBytes: 100 * models.GB, TotalBytes: 237 * models.GB},
		Graphics:   &models.GraphicsInfo{Name: "Intel(R) UHD Graphics"},
		SecureBoot: &models.SecureBootInfo{Enabled: true},
		TPM:        &models.TPMInfo{SpecVersion: "2.0, 0, 1.38"},
		OSVersion:  &models.OSVersionInfo{Name: "Windows 10 Enterprise", Version: "10.0.19045", Build: 19045},
	}
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), "test", args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheckCapableExitsZero(t *testing.T) {
	path := writeFacts(t, capableFacts())

	code, stdout, _ := run(t, "--facts", path, "--json")
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, strings.Count(stdout, "\n"))

	var doc models.Document
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, models.ResultCapable, doc.ReturnResult)
	assert.Empty(t, doc.ReturnReason)
	assert.Equal(t, "Storage: FreeSpace=100GB. PASS; Memory: 16GB. PASS; TPM: 2.0, 0, 1.38. PASS; "+
		"Processor: {AddressWidth=64; MaxClockSpeed=2112; NumberOfLogicalCores=8; Manufacturer=GenuineIntel; Caption=Intel64 Family 6 Model 142 Stepping 12; }. PASS; "+
		"SecureBoot: Enabled. PASS; OSVersion: Windows 10.0.19045 19045. PASS; Graphics: Intel(R) UHD Graphics. PASS;", doc.Logging)
}

func TestCheckNotCapableExitsOne(t *testing.T) {
	facts := capableFacts()
	facts.TPM = nil
	facts.Memory = &models.MemoryInfo{TotalBytes: 2 * models.GB}
	path := writeFacts(t, facts)

	code, stdout, stderr := run(t, "--facts", path)
	assert.Equal(t, 1, code)
	assert.NotContains(t, stderr, "Error:")
	assert.Contains(t, stdout, "[FAIL] Memory: 2 GB")
	assert.Contains(t, stdout, "[FAIL] TPM: Not Found or Not 2.0")
	assert.Contains(t, stdout, `"returnCode":1,"returnReason":"Memory, TPM, "`)
}

func TestCheckWritesOutputFile(t *testing.T) {
	path := writeFacts(t, capableFacts())
	out := filepath.Join(t.TempDir(), "nested", "result.json")

	code, stdout, _ := run(t, "--facts", path, "--json", "--output", out)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimRight(stdout, "\n"), string(data))
}

func TestCheckOutputFailureKeepsReturnCode(t *testing.T) {
	facts := capableFacts()
	facts.TPM = nil
	path := writeFacts(t, facts)

	code, stdout, stderr := run(t, "--facts", path, "--json", "--output", t.TempDir())
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, `"returnCode":1,`)
	assert.Contains(t, stderr, "Could not write result file")
	assert.NotContains(t, stderr, "Error:")

	code, _, stderr = run(t, "--facts", writeFacts(t, capableFacts()), "--json", "--output", t.TempDir())
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Could not write result file")
}

func TestCheckPauseWaitsForInput(t *testing.T) {
	path := writeFacts(t, capableFacts())

	rootCmd := NewRootCmd("test")
	var stdout bytes.Buffer
	rootCmd.SetArgs([]string{"--facts", path, "--pause"})
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader("\n"))

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, stdout.String(), "Press Enter to exit")
}

func TestInvalidConfigExitsTwo(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logLevel: chatty\n"), 0o644))

	code, _, stderr := run(t, "--config", cfgPath, "--facts", writeFacts(t, capableFacts()))
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Error: ")
}

func TestMissingFactsFileExitsTwo(t *testing.T) {
	code, _, stderr := run(t, "--facts", filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "failed to read facts file")
}

func TestTokenCommand(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("auth:\n  secretKey: "+secret+"\n  tokenExpiry: 1h\n"), 0o644))

	code, stdout, stderr := run(t, "token", "--config", cfgPath, "--name", "fleet-01")
	require.Equal(t, 0, code, stderr)

	auth, err := services.NewAuthService(secret, t.TempDir(), time.Hour, logging.Discard())
	require.NoError(t, err)
	claims, err := auth.ValidateToken(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "fleet-01", claims.ServerName)

	code, _, stderr = run(t, "token", "--config", cfgPath, "--name", "bad name")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invalid server name")
}

func TestVersionCommand(t *testing.T) {
	code, stdout, _ := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "readiness version test\n", stdout)
}
