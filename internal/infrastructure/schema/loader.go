// Package schema loads feature schema descriptors from YAML.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bibbank/scoring-service/internal/domain/service"
)

// Load reads and validates the schema descriptor at path. An empty path
// returns the built-in schema.
func Load(path string) (service.FeatureSchema, error) {
	if path == "" {
		return service.DefaultFeatureSchema(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return service.FeatureSchema{}, fmt.Errorf("read feature schema: %w", err)
	}
	s, err := Read(bytes.NewReader(data))
	if err != nil {
		return service.FeatureSchema{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read decodes a schema descriptor. Unknown keys are rejected.
func Read(r io.Reader) (service.FeatureSchema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s service.FeatureSchema
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return service.FeatureSchema{}, fmt.Errorf("feature schema: empty document")
		}
		return service.FeatureSchema{}, fmt.Errorf("decode feature schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return service.FeatureSchema{}, err
	}
	return s, nil
}
