package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSON writes data as indented JSON to w.
func JSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes a structured error to w as JSON.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	_ = JSON(w, ErrorResponse{Error: msg, Code: code, Details: details})
}

// BatchResult is the outcome of one task within a bulk operation.
type BatchResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// BatchResponse is the JSON envelope for bulk operations.
type BatchResponse struct {
	Op        string        `json:"op"`
	Succeeded int           `json:"succeeded"`
	Total     int           `json:"total"`
	Summary   string        `json:"summary"`
	Results   []BatchResult `json:"results"`
}
