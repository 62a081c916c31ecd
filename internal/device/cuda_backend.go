//go:build cuda
// +build cuda

package device

/*
#cgo CFLAGS: -I../../cuda
#cgo LDFLAGS: -L../../cuda -lmatadd_cuda -lcudart
#include "matadd.h"
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"
)

// CUDABackend implements Backend using an NVIDIA CUDA device
type CUDABackend struct {
	logger      *zap.Logger
	initialized bool
	deviceInfo  DeviceInfo
	available   bool
}

// NewCUDABackend creates a new CUDA backend instance
func NewCUDABackend(logger *zap.Logger) *CUDABackend {
	backend := &CUDABackend{
		logger: logger,
	}

	if err := backend.checkDevice(); err != nil {
		logger.Warn("CUDA device not available", zap.Error(err))
		backend.available = false
	} else {
		backend.available = true
	}

	return backend
}

// Initialize prepares the CUDA backend for use
func (c *CUDABackend) Initialize() error {
	if !c.available {
		return fmt.Errorf("CUDA device not available")
	}
	if c.initialized {
		return nil
	}

	c.logger.Debug("initializing CUDA backend")

	result := C.cuda_init()
	if result != C.cudaSuccess {
		return fmt.Errorf("failed to initialize CUDA: %v", cudaErrorString(result))
	}

	var info C.CudaDeviceInfo
	result = C.cuda_get_device_info(&info)
	if result != C.cudaSuccess {
		return fmt.Errorf("failed to get device info: %v", cudaErrorString(result))
	}

	c.deviceInfo = DeviceInfo{
		Name:              C.GoString(&info.name[0]),
		TotalMemory:       int64(info.total_memory),
		AvailableMemory:   int64(info.free_memory),
		ComputeCapability: fmt.Sprintf("%d.%d", int(info.major), int(info.minor)),
		DriverVersion:     cudaVersionString(int(info.driver_version)),
		CUDAVersion:       cudaVersionString(int(info.runtime_version)),
	}

	c.initialized = true
	c.logger.Info("CUDA backend initialized",
		zap.String("device", c.deviceInfo.Name),
		zap.String("compute_capability", c.deviceInfo.ComputeCapability),
		zap.Float64("total_memory_gb", float64(c.deviceInfo.TotalMemory)/(1<<30)))

	return nil
}

// MatrixAdd performs the element-wise addition on the CUDA device. The
// call covers host-to-device transfer, the tiled kernel and the transfer
// back; timing belongs to the caller.
func (c *CUDABackend) MatrixAdd(a, b []float32, rows, cols int) ([]float32, error) {
	if !c.initialized {
		if err := c.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize CUDA backend: %w", err)
		}
	}

	n := rows * cols
	if len(a) != n {
		return nil, fmt.Errorf("matrix A size mismatch: expected %d, got %d", n, len(a))
	}
	if len(b) != n {
		return nil, fmt.Errorf("matrix B size mismatch: expected %d, got %d", n, len(b))
	}
	if n == 0 {
		return []float32{}, nil
	}

	result := make([]float32, n)
	aPtr := (*C.float)(unsafe.Pointer(&a[0]))
	bPtr := (*C.float)(unsafe.Pointer(&b[0]))
	cPtr := (*C.float)(unsafe.Pointer(&result[0]))

	c.logger.Debug("performing CUDA matrix addition",
		zap.Int("rows", rows), zap.Int("cols", cols))

	cudaResult := C.matadd_cuda(aPtr, bPtr, cPtr, C.int(rows), C.int(cols))
	if cudaResult != C.cudaSuccess {
		return nil, fmt.Errorf("CUDA matrix addition failed: %v", cudaErrorString(cudaResult))
	}

	return result, nil
}

// GetDeviceInfo returns information about the CUDA device
func (c *CUDABackend) GetDeviceInfo() DeviceInfo {
	return c.deviceInfo
}

// IsAvailable checks if CUDA is available
func (c *CUDABackend) IsAvailable() bool {
	return c.available
}

// Cleanup releases CUDA resources
func (c *CUDABackend) Cleanup() error {
	if !c.initialized {
		return nil
	}

	c.logger.Debug("cleaning up CUDA backend")

	result := C.cuda_cleanup()
	if result != C.cudaSuccess {
		return fmt.Errorf("failed to cleanup CUDA: %v", cudaErrorString(result))
	}

	c.initialized = false
	return nil
}

// checkDevice verifies CUDA device availability
func (c *CUDABackend) checkDevice() error {
	result := C.cuda_check_device()
	if result != C.cudaSuccess {
		return fmt.Errorf("CUDA device check failed: %v", cudaErrorString(result))
	}
	return nil
}

// cudaErrorString converts a CUDA error code to a string
func cudaErrorString(err C.cudaError_t) string {
	switch err {
	case C.cudaSuccess:
		return "Success"
	case C.cudaErrorInvalidValue:
		return "Invalid value"
	case C.cudaErrorMemoryAllocation:
		return "Memory allocation failed"
	case C.cudaErrorInitializationError:
		return "Initialization error"
	case C.cudaErrorInsufficientDriver:
		return "Insufficient driver"
	case C.cudaErrorNoDevice:
		return "No CUDA device"
	default:
		return fmt.Sprintf("Unknown error (%d)", int(err))
	}
}

// cudaVersionString renders the integer version CUDA reports (e.g. 12040)
// as "major.minor".
func cudaVersionString(v int) string {
	if v <= 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%d.%d", v/1000, (v%1000)/10)
}
