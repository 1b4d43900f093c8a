package models

import "math"

const GB = 1024 * 1024 * 1024

// MemoryInfo represents installed physical memory
type MemoryInfo struct {
	TotalBytes uint64 `json:"total_bytes"`
}

// TotalGB returns total memory in GB rounded to 2 decimals
func (m MemoryInfo) TotalGB() float64 {
	return BytesToGB(m.TotalBytes)
}

// GraphicsInfo describes the first enumerable display adapter
type GraphicsInfo struct {
	Name string `json:"name"`
}

// SecureBootInfo is the UEFI Secure Boot state
type SecureBootInfo struct {
	Enabled bool `json:"enabled"`
}

// TPMInfo holds the TPM version as reported by the platform, e.g. "2.0, 0, 1.38"
type TPMInfo struct {
	SpecVersion string `json:"spec_version"`
}

// OSVersionInfo holds the running OS version, e.g. Version "10.0.22631" and Build 22631
type OSVersionInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   int    `json:"build"`
}

// HostFacts combines the seven collected facts. A nil field means the fact
// could not be collected.
type HostFacts struct {
	Processor  *ProcessorInfo  `json:"processor"`
	Memory     *MemoryInfo     `json:"memory"`
	Storage    *StorageInfo    `json:"storage"`
	Graphics   *GraphicsInfo   `json:"graphics"`
	SecureBoot *SecureBootInfo `json:"secure_boot"`
	TPM        *TPMInfo        `json:"tpm"`
	OSVersion  *OSVersionInfo  `json:"os_version"`
}

// Round2 rounds v to 2 decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BytesToGB converts bytes to GB (2^30) rounded to 2 decimals
func BytesToGB(b uint64) float64 {
	return Round2(float64(b) / GB)
}
