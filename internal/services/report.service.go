package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"readiness/internal/models"
)

// NewDocument builds the fleet-management record from a result
func NewDocument(result *models.EvaluationResult) models.Document {
	return models.Document{
		ReturnCode:   result.ReturnCode,
		ReturnReason: result.ReturnReason,
		Logging:      result.Logging,
		ReturnResult: result.ReturnResult,
	}
}

// MarshalDocument encodes the document as compact JSON without a trailing newline
func MarshalDocument(doc models.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeDocument writes the document as one compact JSON line
func EncodeDocument(w io.Writer, doc models.Document) error {
	data, err := MarshalDocument(doc)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteDocumentFile persists the document for collection by fleet tooling
func WriteDocumentFile(path string, doc models.Document) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := MarshalDocument(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document to %s: %w", path, err)
	}
	return nil
}
