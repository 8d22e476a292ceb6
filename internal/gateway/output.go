package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON writes v as indented JSON to path. An empty path or "-" writes to
// stdout.
func WriteJSON(path string, v any) error {
	if path == "" || path == "-" {
		return encodeJSON(os.Stdout, v)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	defer file.Close()

	if err := encodeJSON(file, v); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

func encodeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	output = append(output, '\n')
	_, err = w.Write(output)
	return err
}

// WriteURIs writes the harvested URIs as a JSON array. A nil slice is written
// as an empty array.
func WriteURIs(path string, uris []string) error {
	if uris == nil {
		uris = []string{}
	}
	return WriteJSON(path, uris)
}
