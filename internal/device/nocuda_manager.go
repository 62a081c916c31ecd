//go:build !cuda
// +build !cuda

package device

// tryCreateCUDABackend attempts to create a CUDA backend when the cuda build
// tag is NOT present
func (m *Manager) tryCreateCUDABackend() Backend {
	return nil
}
