//go:build cuda
// +build cuda

package device

// tryCreateCUDABackend attempts to create a CUDA backend when the cuda build
// tag is present
func (m *Manager) tryCreateCUDABackend() Backend {
	return NewCUDABackend(m.logger)
}
