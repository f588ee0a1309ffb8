package config

import (
	"os"

	"gopkg.in/yaml.v3"

	streamforgeerrors "github.com/streamforge/streamforge/errors"
	"github.com/streamforge/streamforge/runtime"
)

// LoadGraphSpec reads a runtime.GraphSpec from a YAML file at path. Unlike
// Load, a missing file is an error here: there is no sensible default
// graph to fall back to.
func LoadGraphSpec(path string) (runtime.GraphSpec, error) {
	var spec runtime.GraphSpec

	data, err := os.ReadFile(path)
	if err != nil {
		return spec, streamforgeerrors.WrapInvalid(err, "config", "LoadGraphSpec", "read file")
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, streamforgeerrors.WrapInvalid(err, "config", "LoadGraphSpec", "parse yaml")
	}
	return spec, nil
}
