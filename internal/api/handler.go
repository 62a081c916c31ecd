package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/matrixforge/matrix-node/internal/device"
	"github.com/matrixforge/matrix-node/internal/matrix"
	"github.com/matrixforge/matrix-node/internal/metrics"
	"github.com/matrixforge/matrix-node/internal/nvml"
)

// GPUProvider is the slice of the NVML surface the handlers need.
type GPUProvider interface {
	DeviceMemory() ([]nvml.DeviceMemory, error)
}

// Handler serves the node's public endpoints.
type Handler struct {
	logger         *zap.Logger
	devices        *device.Manager
	gpus           GPUProvider
	maxUploadBytes int64
}

func NewHandler(logger *zap.Logger, devices *device.Manager, gpus GPUProvider, maxUploadBytes int64) *Handler {
	return &Handler{
		logger:         logger.Named("api"),
		devices:        devices,
		gpus:           gpus,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleHealth answers liveness probes. It has no dependencies and no side
// effects, so repeated calls always return the same body.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleAdd decodes the two uploaded matrices, validates the pair and runs
// the addition on the selected device. The handler blocks until the result
// is ready; only the shape, timing and device label go back out.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	a, err := h.readMatrix(r, "matrix1")
	if err != nil {
		h.writeAddError(w, err)
		return
	}
	b, err := h.readMatrix(r, "matrix2")
	if err != nil {
		h.writeAddError(w, err)
		return
	}

	if err := matrix.Validate(a, b); err != nil {
		h.logger.Debug("matrix pair rejected", zap.Error(err))
		h.writeAddError(w, err)
		return
	}

	start := time.Now()
	sum, err := h.devices.MatrixAdd(
		device.Float64ToFloat32(a.Data),
		device.Float64ToFloat32(b.Data),
		a.Rows, a.Cols,
	)
	elapsed := time.Since(start)
	if err != nil {
		h.logger.Error("matrix addition failed", zap.Error(err))
		h.writeAddError(w, err)
		return
	}

	metrics.MatrixAddDuration.Observe(float64(elapsed.Nanoseconds()) / 1e6)
	metrics.MatrixAddElements.Set(float64(len(sum)))
	metrics.MatrixAddBackend.WithLabelValues(h.devices.GetBackendType()).Inc()

	h.logger.Info("matrices added",
		zap.String("a", a.Name),
		zap.String("b", b.Name),
		zap.Stringer("shape", a.Shape()),
		zap.Duration("elapsed", elapsed),
		zap.String("device", h.devices.DeviceLabel()))

	writeJSON(w, http.StatusOK, AddResponse{
		MatrixShape: [2]int{a.Rows, a.Cols},
		ElapsedTime: elapsed.Seconds(),
		Device:      h.devices.DeviceLabel(),
	})
}

// HandleGPUInfo reports per-device memory. Zero devices is a valid answer
// and yields an empty list; only a failing NVML runtime is an error.
func (h *Handler) HandleGPUInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	readings, err := h.gpus.DeviceMemory()
	if err != nil {
		h.logger.Error("GPU info query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to query GPU info: %v", err))
		return
	}

	gpus := make([]GPUInfo, 0, len(readings))
	for _, d := range readings {
		gpus = append(gpus, GPUInfo{
			GPU:           strconv.Itoa(d.Index),
			MemoryUsedMB:  d.UsedMB,
			MemoryTotalMB: d.TotalMB,
		})
	}
	writeJSON(w, http.StatusOK, GPUInfoResponse{GPUs: gpus})
}

func (h *Handler) readMatrix(r *http.Request, field string) (*matrix.Matrix, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, &matrix.DecodeError{Field: field, Err: fmt.Errorf("missing upload: %w", err)}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &matrix.DecodeError{Field: field, Err: err}
	}

	m, err := matrix.Decode(data, field)
	if err != nil {
		return nil, err
	}
	// Bare .npy payloads carry no array name; fall back to the filename.
	if m.Name == field && header.Filename != "" {
		m.Name = header.Filename
	}
	return m, nil
}

// writeAddError maps the error taxonomy onto status codes: client faults
// are 400, a missing device is 503, everything else is 500.
func (h *Handler) writeAddError(w http.ResponseWriter, err error) {
	var (
		decodeErr *matrix.DecodeError
		shapeErr  *matrix.ShapeMismatchError
		dtypeErr  *matrix.DTypeMismatchError
	)
	switch {
	case errors.As(err, &decodeErr), errors.As(err, &shapeErr), errors.As(err, &dtypeErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, device.ErrNoDevice):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
