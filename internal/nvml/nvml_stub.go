//go:build nonvml
// +build nonvml

package nvml

import "fmt"

// NVMLProvider stub - used when building without NVIDIA libraries
type NVMLProvider struct{}

func NewProvider() *NVMLProvider {
	return &NVMLProvider{}
}

func (p *NVMLProvider) Init() error {
	return fmt.Errorf("NVML not available (built with nonvml tag)")
}

func (p *NVMLProvider) Shutdown() error {
	return nil
}

func (p *NVMLProvider) DeviceCount() (int, error) {
	return 0, fmt.Errorf("NVML not available")
}

func (p *NVMLProvider) DeviceMemory() ([]DeviceMemory, error) {
	return nil, fmt.Errorf("NVML not available")
}

// Compile-time interface check
var _ Provider = (*NVMLProvider)(nil)
