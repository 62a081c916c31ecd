//go:build !nonvml
// +build !nonvml

package nvml

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

type NVMLProvider struct{}

func NewProvider() *NVMLProvider {
	return &NVMLProvider{}
}

func (p *NVMLProvider) Init() error {
	ret := nvml.Init()
	if ret != nvml.SUCCESS {
		return fmt.Errorf("NVML init failed: %v", nvml.ErrorString(ret))
	}
	return nil
}

func (p *NVMLProvider) Shutdown() error {
	ret := nvml.Shutdown()
	if ret != nvml.SUCCESS {
		return fmt.Errorf("NVML shutdown failed: %v", nvml.ErrorString(ret))
	}
	return nil
}

func (p *NVMLProvider) DeviceCount() (int, error) {
	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to get device count: %v", nvml.ErrorString(ret))
	}
	return count, nil
}

func (p *NVMLProvider) DeviceMemory() ([]DeviceMemory, error) {
	count, err := p.DeviceCount()
	if err != nil {
		return nil, err
	}

	readings := make([]DeviceMemory, 0, count)
	for i := 0; i < count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			continue // Skip failed device
		}

		memInfo, ret := device.GetMemoryInfo()
		if ret != nvml.SUCCESS {
			continue
		}
		uuid, _ := device.GetUUID()
		name, _ := device.GetName()

		readings = append(readings, DeviceMemory{
			Index:   i,
			UUID:    uuid,
			Name:    name,
			UsedMB:  memInfo.Used / (1024 * 1024),
			TotalMB: memInfo.Total / (1024 * 1024),
		})
	}
	return readings, nil
}

// Compile-time interface check
var _ Provider = (*NVMLProvider)(nil)
