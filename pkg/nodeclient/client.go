package nodeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// Client talks to a matrix node over its HTTP API.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the node at baseURL. A nil httpClient falls back
// to http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// AddResult mirrors the node's /add response.
type AddResult struct {
	MatrixShape [2]int  `json:"matrix_shape"`
	ElapsedTime float64 `json:"elapsed_time"`
	Device      string  `json:"device"`
}

// GPUDevice mirrors one entry of the node's /gpu-info response.
type GPUDevice struct {
	GPU           string `json:"gpu"`
	MemoryUsedMB  uint64 `json:"memory_used_MB"`
	MemoryTotalMB uint64 `json:"memory_total_MB"`
}

type gpuInfoResponse struct {
	GPUs []GPUDevice `json:"gpus"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health checks the node's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// Add uploads two serialized matrices (.npy files or single-array .npz
// archives) and returns the node's addition report.
func (c *Client) Add(ctx context.Context, matrix1, matrix2 []byte) (*AddResult, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := writePart(mw, "matrix1", matrix1); err != nil {
		return nil, err
	}
	if err := writePart(mw, "matrix2", matrix2); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/add", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result AddResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// GPUInfo returns the node's per-device memory readings.
func (c *Client) GPUInfo(ctx context.Context) ([]GPUDevice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/gpu-info", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result gpuInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.GPUs, nil
}

func writePart(mw *multipart.Writer, field string, payload []byte) error {
	fw, err := mw.CreateFormFile(field, field+".npy")
	if err != nil {
		return err
	}
	_, err = fw.Write(payload)
	return err
}

// apiError turns a non-200 response into an error carrying the node's
// reason string when one is present.
func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Error != "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, er.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
