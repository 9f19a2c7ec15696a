package codec

import (
	"errors"
	"fmt"
	"io"

	"clientrepo/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec stores the collection as a YAML sequence
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Decode reads a YAML sequence of client records. An empty document is an empty collection.
func (c *YAMLCodec) Decode(r io.Reader) ([]domain.Client, error) {
	var records []record
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Client{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return fromRecords(records)
}

// Encode writes the collection as YAML, preserving record key order
func (c *YAMLCodec) Encode(clients []domain.Client, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(toRecords(clients)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
