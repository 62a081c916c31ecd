package device

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/mem"
	"go.uber.org/zap"
)

// CPUBackend runs kernels on the host with the same launch geometry as the
// CUDA backend. It is the fallback device and is always available.
type CPUBackend struct {
	logger      *zap.Logger
	initialized bool
}

// NewCPUBackend creates a new CPU backend instance
func NewCPUBackend(logger *zap.Logger) *CPUBackend {
	return &CPUBackend{
		logger: logger,
	}
}

// Initialize prepares the CPU backend for use
func (c *CPUBackend) Initialize() error {
	if c.initialized {
		return nil
	}
	c.initialized = true
	c.logger.Info("CPU backend initialized", zap.Int("workers", runtime.NumCPU()))
	return nil
}

// Cleanup releases any resources (none for CPU backend)
func (c *CPUBackend) Cleanup() error {
	c.initialized = false
	return nil
}

// IsAvailable checks if the backend is available (always true for CPU)
func (c *CPUBackend) IsAvailable() bool {
	return true
}

// GetDeviceInfo returns device information for CPU
func (c *CPUBackend) GetDeviceInfo() DeviceInfo {
	info := DeviceInfo{
		Name:              fmt.Sprintf("CPU (%s)", runtime.GOARCH),
		ComputeCapability: "N/A",
		DriverVersion:     runtime.Version(),
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = int64(vm.Total)
		info.AvailableMemory = int64(vm.Available)
	} else {
		c.logger.Debug("host memory query failed", zap.Error(err))
	}
	return info
}

// MatrixAdd computes the element-wise sum of a and b over a rows x cols
// domain, tiled exactly like the device kernel so both paths exercise the
// same geometry and boundary guard.
func (c *CPUBackend) MatrixAdd(a, b []float32, rows, cols int) ([]float32, error) {
	if !c.initialized {
		return nil, fmt.Errorf("CPU backend not initialized")
	}
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("invalid matrix extents %dx%d", rows, cols)
	}

	n := rows * cols
	if len(a) != n {
		return nil, fmt.Errorf("matrix A size mismatch: expected %d, got %d", n, len(a))
	}
	if len(b) != n {
		return nil, fmt.Errorf("matrix B size mismatch: expected %d, got %d", n, len(b))
	}

	result := make([]float32, n)
	grid, block := gridFor(rows, cols)
	launch(grid, block, func(tid ThreadID) {
		row := tid.GlobalY()
		col := tid.GlobalX()
		if row >= rows || col >= cols {
			return
		}
		i := row*cols + col
		result[i] = a[i] + b[i]
	})

	return result, nil
}
