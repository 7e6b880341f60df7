package dialect

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

// File is the on-disk layout of a dialect definition file
type File struct {
	Dialects []*Definition `yaml:"dialects"`
}

// LoadFile reads dialect definitions from a YAML file and validates each one
func LoadFile(path string) ([]*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("failed to read dialect file: %s", path), err)
	}
	return Parse(data, path)
}

// Parse decodes dialect definitions; source is only used in error messages
func Parse(data []byte, source string) ([]*Definition, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.NewConfigUnmarshalError(source, err)
	}

	if len(f.Dialects) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDialect, fmt.Sprintf("no dialects defined in %s", source)).
			WithSuggestion("Add a top-level 'dialects:' list")
	}

	for i, d := range f.Dialects {
		if d == nil {
			return nil, errors.New(errors.ErrCodeInvalidDialect, fmt.Sprintf("dialect #%d in %s is empty", i+1, source))
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Dialects, nil
}

// LoadInto loads a dialect file and registers every definition it contains
func LoadInto(r *Registry, path string) error {
	defs, err := LoadFile(path)
	if err != nil {
		return err
	}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
