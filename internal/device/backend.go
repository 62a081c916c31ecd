package device

// DeviceInfo contains information about the active compute device
type DeviceInfo struct {
	Name              string `json:"name"`
	TotalMemory       int64  `json:"totalMemory"`     // in bytes
	AvailableMemory   int64  `json:"availableMemory"` // in bytes
	ComputeCapability string `json:"computeCapability"`
	DriverVersion     string `json:"driverVersion"`
	CUDAVersion       string `json:"cudaVersion,omitempty"`
}

// Backend defines the interface for compute backends. It allows multiple
// device implementations (CUDA, CPU) behind one API; selection and fallback
// are the Manager's job, not the backend's.
//
// Implementations must be safe for concurrent MatrixAdd calls and must
// release device resources in Cleanup.
type Backend interface {
	// MatrixAdd computes the element-wise sum of a and b, each holding
	// rows*cols values in row-major order, and returns a result slice of
	// the same layout.
	MatrixAdd(a, b []float32, rows, cols int) ([]float32, error)

	// GetDeviceInfo returns information about the device for reporting
	// and debugging.
	GetDeviceInfo() DeviceInfo

	// IsAvailable performs a quick availability probe without heavy
	// initialization. Used by the Manager to select a backend.
	IsAvailable() bool

	// Initialize prepares the backend for use. Must be called once before
	// the first MatrixAdd.
	Initialize() error

	// Cleanup releases any resources held by the backend. The backend is
	// unusable afterwards.
	Cleanup() error
}
