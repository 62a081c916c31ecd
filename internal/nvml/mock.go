package nvml

// MockProvider provides fake GPU readings for testing
type MockProvider struct {
	Devices     []DeviceMemory
	InitErr     error
	ShutdownErr error
	QueryErr    error
}

func NewMockProvider(devices []DeviceMemory) *MockProvider {
	return &MockProvider{Devices: devices}
}

func (p *MockProvider) Init() error {
	return p.InitErr
}

func (p *MockProvider) Shutdown() error {
	return p.ShutdownErr
}

func (p *MockProvider) DeviceCount() (int, error) {
	if p.QueryErr != nil {
		return 0, p.QueryErr
	}
	return len(p.Devices), nil
}

func (p *MockProvider) DeviceMemory() ([]DeviceMemory, error) {
	if p.QueryErr != nil {
		return nil, p.QueryErr
	}
	return p.Devices, nil
}

// Compile-time interface check
var _ Provider = (*MockProvider)(nil)
