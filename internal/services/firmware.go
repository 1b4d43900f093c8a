package services

import (
	"fmt"
	"strings"

	"readiness/internal/models"
)

// parseSecureBootVar decodes an efivarfs SecureBoot variable: 4 attribute
// bytes followed by a single state byte.
func parseSecureBootVar(data []byte) (bool, error) {
	if len(data) < 5 {
		return false, fmt.Errorf("unexpected SecureBoot variable length %d", len(data))
	}
	return data[4] == 1, nil
}

// tpmFromMajor maps the sysfs tpm_version_major value to a TPM version string
func tpmFromMajor(major string) (*models.TPMInfo, error) {
	switch strings.TrimSpace(major) {
	case "2":
		return &models.TPMInfo{SpecVersion: "2.0"}, nil
	case "1":
		return &models.TPMInfo{SpecVersion: "1.2"}, nil
	default:
		return nil, fmt.Errorf("unknown TPM major version %q", strings.TrimSpace(major))
	}
}
