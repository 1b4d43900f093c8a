//go:build windows

package services

import (
	"context"
	"fmt"
	"strings"

	"readiness/internal/models"

	"github.com/yusufpapurcu/wmi"
	"golang.org/x/sys/windows/registry"
)

const (
	tpmNamespace   = `root\CIMV2\Security\MicrosoftTpm`
	secureBootPath = `SYSTEM\CurrentControlSet\Control\SecureBoot\State`
)

type win32Processor struct {
	AddressWidth              uint16
	MaxClockSpeed             uint32
	NumberOfLogicalProcessors uint32
	Manufacturer              string
	Caption                   string
}

type win32Tpm struct {
	SpecVersion string
}

// Processor reads Win32_Processor, falling back to gopsutil if WMI is unavailable
func (h *HostPlatform) Processor(ctx context.Context) (*models.ProcessorInfo, error) {
	var dst []win32Processor
	q := wmi.CreateQuery(&dst, "", "Win32_Processor")
	if err := wmi.Query(q, &dst); err != nil || len(dst) == 0 {
		h.log.Warnf("Could not query Win32_Processor, using fallback: %v", err)
		return gopsutilProcessor(ctx)
	}

	p := dst[0]
	return &models.ProcessorInfo{
		MaxClockSpeedMHz: p.MaxClockSpeed,
		LogicalCores:     int(p.NumberOfLogicalProcessors),
		Manufacturer:     strings.TrimSpace(p.Manufacturer),
		Caption:          strings.TrimSpace(p.Caption),
		AddressWidth:     p.AddressWidth,
	}, nil
}

// SecureBoot reads UEFISecureBootEnabled from the registry. The key does not
// exist on legacy BIOS systems.
func (h *HostPlatform) SecureBoot(_ context.Context) (*models.SecureBootInfo, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, secureBootPath, registry.QUERY_VALUE)
	if err != nil {
		return nil, fmt.Errorf("retrieving secure boot registry key: %w", err)
	}
	defer key.Close()

	enabled, _, err := key.GetIntegerValue("UEFISecureBootEnabled")
	if err != nil {
		return nil, fmt.Errorf("retrieving UEFISecureBootEnabled: %w", err)
	}
	return &models.SecureBootInfo{Enabled: enabled == 1}, nil
}

// TPM reads Win32_Tpm.SpecVersion, e.g. "2.0, 0, 1.38". Requires elevation.
func (h *HostPlatform) TPM(_ context.Context) (*models.TPMInfo, error) {
	var dst []win32Tpm
	q := wmi.CreateQuery(&dst, "", "Win32_Tpm")
	if err := wmi.QueryNamespace(q, &dst, tpmNamespace); err != nil {
		return nil, fmt.Errorf("querying WMI Win32_Tpm: %w", err)
	}
	if len(dst) == 0 {
		return nil, fmt.Errorf("no TPM device found")
	}
	return &models.TPMInfo{SpecVersion: strings.TrimSpace(dst[0].SpecVersion)}, nil
}
