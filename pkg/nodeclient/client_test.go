package nodeclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHealth(t *testing.T) {
	t.Run("healthy node", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/health", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		err := client.Health(context.Background())
		assert.NoError(t, err)
	})

	t.Run("unhealthy node", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		err := client.Health(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})
}

func TestClientAdd(t *testing.T) {
	t.Run("successful addition", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/add", r.URL.Path)

			require.NoError(t, r.ParseMultipartForm(32<<20))
			for _, field := range []string{"matrix1", "matrix2"} {
				file, _, err := r.FormFile(field)
				require.NoError(t, err, "missing upload %q", field)
				payload, err := io.ReadAll(file)
				require.NoError(t, err)
				assert.NotEmpty(t, payload)
				_ = file.Close()
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"matrix_shape":[100,100],"elapsed_time":0.0042,"device":"CPU"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		result, err := client.Add(context.Background(), []byte("matrix-a"), []byte("matrix-b"))
		require.NoError(t, err)
		assert.Equal(t, [2]int{100, 100}, result.MatrixShape)
		assert.Equal(t, 0.0042, result.ElapsedTime)
		assert.Equal(t, "CPU", result.Device)
	})

	t.Run("node rejects the upload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"matrix shape mismatch: (100, 100) vs (50, 50)"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		result, err := client.Add(context.Background(), []byte("matrix-a"), []byte("matrix-b"))
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "matrix shape mismatch: (100, 100) vs (50, 50)")
		assert.Contains(t, err.Error(), "400")
	})

	t.Run("non-JSON error body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream exploded"))
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		_, err := client.Add(context.Background(), []byte("matrix-a"), []byte("matrix-b"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "request failed with status 502")
	})
}

func TestClientGPUInfo(t *testing.T) {
	t.Run("reports devices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/gpu-info", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"gpus":[{"gpu":"0","memory_used_MB":312,"memory_total_MB":4096}]}`))
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		devices, err := client.GPUInfo(context.Background())
		require.NoError(t, err)
		require.Len(t, devices, 1)
		assert.Equal(t, "0", devices[0].GPU)
		assert.Equal(t, uint64(312), devices[0].MemoryUsedMB)
		assert.Equal(t, uint64(4096), devices[0].MemoryTotalMB)
	})

	t.Run("no devices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"gpus":[]}`))
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		devices, err := client.GPUInfo(context.Background())
		require.NoError(t, err)
		assert.Empty(t, devices)
	})

	t.Run("query failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"failed to initialize NVML: Unknown Error"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		devices, err := client.GPUInfo(context.Background())
		require.Error(t, err)
		assert.Nil(t, devices)
		assert.Contains(t, err.Error(), "failed to initialize NVML")
	})
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := New(srv.URL+"/", nil)
	assert.NoError(t, client.Health(context.Background()))
}
