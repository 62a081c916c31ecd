package api

import (
	"encoding/json"
	"net/http"
)

type HealthResponse struct {
	Status string `json:"status"`
}

// AddResponse reports the outcome of one addition. ElapsedTime is the
// wall-clock seconds spent in the compute step, transfers included.
type AddResponse struct {
	MatrixShape [2]int  `json:"matrix_shape"`
	ElapsedTime float64 `json:"elapsed_time"`
	Device      string  `json:"device"`
}

type GPUInfo struct {
	GPU           string `json:"gpu"`
	MemoryUsedMB  uint64 `json:"memory_used_MB"`
	MemoryTotalMB uint64 `json:"memory_total_MB"`
}

type GPUInfoResponse struct {
	GPUs []GPUInfo `json:"gpus"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
