//go:build linux

package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"readiness/internal/models"
)

// EFI global variable GUID
const secureBootVar = "SecureBoot-8be4df61-93ca-11d2-aa0d-00e098032b8c"

// Processor reads the processor descriptor through gopsutil
func (h *HostPlatform) Processor(ctx context.Context) (*models.ProcessorInfo, error) {
	return gopsutilProcessor(ctx)
}

// SecureBoot reads the SecureBoot EFI variable
func (h *HostPlatform) SecureBoot(_ context.Context) (*models.SecureBootInfo, error) {
	efi := filepath.Join(h.sysfsRoot, "firmware", "efi")
	if _, err := os.Stat(efi); err != nil {
		return nil, fmt.Errorf("system not booted in UEFI mode: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(efi, "efivars", secureBootVar))
	if err != nil {
		return nil, fmt.Errorf("failed to read SecureBoot variable: %w", err)
	}
	enabled, err := parseSecureBootVar(data)
	if err != nil {
		return nil, err
	}
	return &models.SecureBootInfo{Enabled: enabled}, nil
}

// TPM reads the TPM version from sysfs
func (h *HostPlatform) TPM(_ context.Context) (*models.TPMInfo, error) {
	dev := filepath.Join(h.sysfsRoot, "class", "tpm", "tpm0")
	if _, err := os.Stat(dev); err != nil {
		return nil, fmt.Errorf("no TPM device found: %w", err)
	}

	// tpm_version_major exists since Linux 5.6
	data, err := os.ReadFile(filepath.Join(dev, "tpm_version_major"))
	if err == nil {
		return tpmFromMajor(string(data))
	}

	// TPM 1.2 chips expose a caps file with the TCG version
	caps, capsErr := os.ReadFile(filepath.Join(dev, "device", "caps"))
	if capsErr != nil {
		return nil, fmt.Errorf("failed to read TPM version: %w", errors.Join(err, capsErr))
	}
	for _, line := range strings.Split(string(caps), "\n") {
		if v, ok := strings.CutPrefix(line, "TCG version:"); ok {
			return &models.TPMInfo{SpecVersion: strings.TrimSpace(v)}, nil
		}
	}
	return nil, errors.New("TPM version not reported")
}
