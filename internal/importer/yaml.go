package importer

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Providers []Row `yaml:"providers"`
}

// ReadYAML parses a document with a top-level "providers" list.
func ReadYAML(r io.Reader) ([]Row, error) {
	var f yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	for i := range f.Providers {
		f.Providers[i].Source = i + 1
	}
	return f.Providers, nil
}
