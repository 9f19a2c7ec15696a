package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"clientrepo/internal/domain"
)

// JSONCodec stores the collection as a JSON array
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Decode reads a JSON array of client records. Empty input is an empty collection.
func (c *JSONCodec) Decode(r io.Reader) ([]domain.Client, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Client{}, nil
		}
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return fromRecords(records)
}

// Encode writes the collection as an indented JSON array
func (c *JSONCodec) Encode(clients []domain.Client, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(toRecords(clients)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
