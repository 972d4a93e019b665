package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RequestFileName is the name of the request file written to the temp dir
const RequestFileName = "engine-request.json"

// WriteRequest persists req as JSON to <req.TempDir>/engine-request.json
// and returns the file's path
func WriteRequest(req *Request) (string, error) {
	if err := os.MkdirAll(req.TempDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	path := filepath.Join(req.TempDir, RequestFileName)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create engine request: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(req); err != nil {
		return "", fmt.Errorf("failed to encode engine request: %w", err)
	}
	return path, file.Close()
}

// ReadRequest loads a request written by WriteRequest
func ReadRequest(path string) (*Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine request: %w", err)
	}
	defer file.Close()

	var req Request
	if err := json.NewDecoder(file).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode engine request: %w", err)
	}
	return &req, nil
}
