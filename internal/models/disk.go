package models

// StorageInfo represents free space on the system volume
type StorageInfo struct {
	Path       string `json:"path"`
	FreeBytes  uint64 `json:"free_bytes"`
	TotalBytes uint64 `json:"total_bytes"`
}

// FreeGB returns free space in GB (2^30 bytes) rounded to 2 decimals
func (s StorageInfo) FreeGB() float64 {
	return BytesToGB(s.FreeBytes)
}
