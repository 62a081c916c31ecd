package device

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Policy selects which backend the Manager may run on.
type Policy string

const (
	// PolicyAuto prefers CUDA when compiled in and a device answers,
	// falling back to the CPU backend otherwise.
	PolicyAuto Policy = "auto"
	// PolicyCUDA requires a CUDA device; Manager construction fails
	// with ErrNoDevice when none is usable.
	PolicyCUDA Policy = "cuda"
	// PolicyCPU forces the CPU backend even when a GPU is present.
	PolicyCPU Policy = "cpu"
)

// Manager handles backend selection and lifecycle. It is built once at
// startup and is the only path through which request handlers reach the
// compute device.
type Manager struct {
	backend Backend
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewManager creates a manager and initializes a backend according to policy.
func NewManager(logger *zap.Logger, policy Policy) (*Manager, error) {
	m := &Manager{
		logger: logger,
	}

	if err := m.detectAndInitialize(policy); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) detectAndInitialize(policy Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch policy {
	case PolicyAuto, "":
		if backend := m.initCUDA(); backend != nil {
			m.backend = backend
			return nil
		}
		return m.initCPU()
	case PolicyCUDA:
		if backend := m.initCUDA(); backend != nil {
			m.backend = backend
			return nil
		}
		return fmt.Errorf("device policy %q: %w", policy, ErrNoDevice)
	case PolicyCPU:
		return m.initCPU()
	default:
		return fmt.Errorf("unknown device policy %q", policy)
	}
}

// initCUDA returns an initialized CUDA backend, or nil when the build has no
// CUDA support or no device is usable.
func (m *Manager) initCUDA() Backend {
	cudaBackend := m.tryCreateCUDABackend()
	if cudaBackend == nil || !cudaBackend.IsAvailable() {
		return nil
	}
	if err := cudaBackend.Initialize(); err != nil {
		m.logger.Warn("CUDA backend failed to initialize", zap.Error(err))
		_ = cudaBackend.Cleanup()
		return nil
	}
	return cudaBackend
}

func (m *Manager) initCPU() error {
	cpuBackend := NewCPUBackend(m.logger)
	if err := cpuBackend.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize CPU backend: %w", err)
	}
	m.backend = cpuBackend
	return nil
}

// GetBackend returns the current backend
func (m *Manager) GetBackend() Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backend
}

// MatrixAdd performs the addition on the selected backend. Backend failures
// come back as *ComputeError; a missing backend yields ErrNoDevice.
func (m *Manager) MatrixAdd(a, b []float32, rows, cols int) ([]float32, error) {
	backend := m.GetBackend()
	if backend == nil {
		return nil, ErrNoDevice
	}
	result, err := backend.MatrixAdd(a, b, rows, cols)
	if err != nil {
		return nil, &ComputeError{Backend: m.GetBackendType(), Op: "matrix add", Err: err}
	}
	return result, nil
}

// GetDeviceInfo returns device information from the current backend
func (m *Manager) GetDeviceInfo() DeviceInfo {
	backend := m.GetBackend()
	if backend == nil {
		return DeviceInfo{Name: "No backend available"}
	}
	return backend.GetDeviceInfo()
}

// IsGPUAvailable returns true if a GPU backend is active
func (m *Manager) IsGPUAvailable() bool {
	backend := m.GetBackend()
	if backend == nil {
		return false
	}
	// Check if it's not the CPU backend
	_, isCPU := backend.(*CPUBackend)
	return !isCPU
}

// DeviceLabel returns the device class reported to clients: "GPU" or "CPU".
func (m *Manager) DeviceLabel() string {
	if m.IsGPUAvailable() {
		return "GPU"
	}
	return "CPU"
}

// GetBackendType returns a string describing the current backend type
func (m *Manager) GetBackendType() string {
	backend := m.GetBackend()
	if backend == nil {
		return "none"
	}
	if _, isCPU := backend.(*CPUBackend); isCPU {
		return "cpu"
	}
	return "cuda"
}

// Cleanup releases resources held by the current backend
func (m *Manager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		if err := m.backend.Cleanup(); err != nil {
			return err
		}
		m.backend = nil
	}
	return nil
}
