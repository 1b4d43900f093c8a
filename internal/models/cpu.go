package models

// ProcessorInfo holds the processor descriptor used by the Processor facet
type ProcessorInfo struct {
	MaxClockSpeedMHz uint32 `json:"max_clock_speed_mhz"`
	LogicalCores     int    `json:"logical_cores"`
	Manufacturer     string `json:"manufacturer"`
	Caption          string `json:"caption"`
	AddressWidth     uint16 `json:"address_width"`
}

// ClockSpeedGHz returns the clock speed in GHz rounded to 2 decimals
func (p ProcessorInfo) ClockSpeedGHz() float64 {
	return Round2(float64(p.MaxClockSpeedMHz) / 1000)
}
