package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matrixforge/matrix-node/internal/device"
	"github.com/matrixforge/matrix-node/internal/nvml"
)

func newTestHandler(t *testing.T, gpus GPUProvider) *Handler {
	t.Helper()
	manager, err := device.NewManager(zap.NewNop(), device.PolicyCPU)
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Cleanup() })

	return NewHandler(zap.NewNop(), manager, gpus, 64<<20)
}

func TestHandleHealth(t *testing.T) {
	handler := newTestHandler(t, nvml.NewMockProvider(nil))

	t.Run("returns ok", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("idempotent across calls", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			handler.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
		}
	})

	t.Run("rejects POST", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleHealth(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleGPUInfo(t *testing.T) {
	t.Run("single device", func(t *testing.T) {
		handler := newTestHandler(t, nvml.NewMockProvider([]nvml.DeviceMemory{
			{Index: 0, Name: "Test GPU", UUID: "GPU-0000", UsedMB: 312, TotalMB: 4096},
		}))

		rec := httptest.NewRecorder()
		handler.HandleGPUInfo(rec, httptest.NewRequest(http.MethodGet, "/gpu-info", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"gpus":[{"gpu":"0","memory_used_MB":312,"memory_total_MB":4096}]}`,
			rec.Body.String())
	})

	t.Run("multiple devices keep index order", func(t *testing.T) {
		handler := newTestHandler(t, nvml.NewMockProvider([]nvml.DeviceMemory{
			{Index: 0, UsedMB: 100, TotalMB: 8192},
			{Index: 1, UsedMB: 200, TotalMB: 8192},
		}))

		rec := httptest.NewRecorder()
		handler.HandleGPUInfo(rec, httptest.NewRequest(http.MethodGet, "/gpu-info", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp GPUInfoResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.GPUs, 2)
		assert.Equal(t, "0", resp.GPUs[0].GPU)
		assert.Equal(t, "1", resp.GPUs[1].GPU)
	})

	t.Run("zero devices yields an empty list, not null", func(t *testing.T) {
		handler := newTestHandler(t, nvml.NewMockProvider(nil))

		rec := httptest.NewRecorder()
		handler.HandleGPUInfo(rec, httptest.NewRequest(http.MethodGet, "/gpu-info", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"gpus":[]}`, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "null")
	})

	t.Run("runtime failure is a server error", func(t *testing.T) {
		provider := nvml.NewMockProvider(nil)
		provider.QueryErr = errors.New("driver unloaded")
		handler := newTestHandler(t, provider)

		rec := httptest.NewRecorder()
		handler.HandleGPUInfo(rec, httptest.NewRequest(http.MethodGet, "/gpu-info", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "failed to query GPU info")
	})

	t.Run("rejects POST", func(t *testing.T) {
		handler := newTestHandler(t, nvml.NewMockProvider(nil))

		rec := httptest.NewRecorder()
		handler.HandleGPUInfo(rec, httptest.NewRequest(http.MethodPost, "/gpu-info", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestNewRouter(t *testing.T) {
	handler := newTestHandler(t, nvml.NewMockProvider(nil))
	router := NewRouter(handler)

	t.Run("routes health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("exposes prometheus metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "endpoint_responses_total")
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
