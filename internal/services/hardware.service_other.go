//go:build !windows && !linux

package services

import (
	"context"

	"readiness/internal/models"
)

// Processor reads the processor descriptor through gopsutil
func (h *HostPlatform) Processor(ctx context.Context) (*models.ProcessorInfo, error) {
	return gopsutilProcessor(ctx)
}

func (h *HostPlatform) SecureBoot(_ context.Context) (*models.SecureBootInfo, error) {
	return nil, errUnsupported
}

func (h *HostPlatform) TPM(_ context.Context) (*models.TPMInfo, error) {
	return nil, errUnsupported
}
