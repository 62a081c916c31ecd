package nvml

// DeviceMemory is a point-in-time memory reading for one GPU. MB values are
// whole megabytes (bytes divided by 1024^2, truncated).
type DeviceMemory struct {
	Index   int
	UUID    string
	Name    string
	UsedMB  uint64
	TotalMB uint64
}

// Provider abstracts the NVML runtime so handlers and tests can swap in
// fakes. Implementations must be safe for concurrent use after Init.
type Provider interface {
	Init() error
	Shutdown() error
	DeviceCount() (int, error)
	// DeviceMemory queries every device fresh on each call; readings are
	// never cached.
	DeviceMemory() ([]DeviceMemory, error)
}
