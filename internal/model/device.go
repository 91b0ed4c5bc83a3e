package model

// DeviceInfo describes the requesting device's capabilities. Zero values
// mean "unknown"; Normalized substitutes mid-range-equivalent defaults.
type DeviceInfo struct {
	MemoryGB        float64 `json:"memory"`
	CPUCores        int     `json:"cores"`
	AcceleratorTier int     `json:"accelerator_tier"` // 0=none, 1=basic GPU/NPU, 2+=discrete/high-perf
	Platform        string  `json:"platform"`         // e.g. "mobile", "desktop"
	NetworkSpeed    string  `json:"network_speed"`
}

// Defaults applied for missing descriptor fields.
const (
	DefaultMemoryGB        = 4
	DefaultCPUCores        = 4
	DefaultAcceleratorTier = 0
)

// Normalized returns a copy with unset fields replaced by defaults.
func (d DeviceInfo) Normalized() DeviceInfo {
	out := d
	if out.MemoryGB <= 0 {
		out.MemoryGB = DefaultMemoryGB
	}
	if out.CPUCores <= 0 {
		out.CPUCores = DefaultCPUCores
	}
	if out.AcceleratorTier < 0 {
		out.AcceleratorTier = DefaultAcceleratorTier
	}
	return out
}
