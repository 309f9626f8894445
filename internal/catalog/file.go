package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a versions-catalog file, so template authors
// can keep shared pins in data files next to their templates:
//
//	catalog:
//	  react: "18.3.1"
//	overrides:
//	  lodash: "npm:lodash-es@4.17.21"
type File struct {
	Catalog   map[string]string `yaml:"catalog"`
	Overrides map[string]string `yaml:"overrides"`
}

// LoadFile reads and parses a versions-catalog YAML file. Unknown keys are
// rejected so typos fail loudly at authoring time.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}

	return &file, nil
}

// ComposeFromFiles loads each file in order as a base layer and composes a
// catalog and overrides set from them plus the given additions.
func ComposeFromFiles(paths []string, catalogAdditions, overrideAdditions map[string]string) (*Catalog, *Overrides, []DuplicateWarning, error) {
	var catalogBases []*Catalog
	var overrideBases []*Overrides

	for _, path := range paths {
		file, err := LoadFile(path)
		if err != nil {
			return nil, nil, nil, err
		}
		catalogBases = append(catalogBases, NewCatalog(file.Catalog))
		overrideBases = append(overrideBases, NewOverrides(file.Overrides))
	}

	composedCatalog, catalogWarnings, err := ComposeCatalog(catalogBases, catalogAdditions)
	if err != nil {
		return nil, nil, nil, err
	}

	composedOverrides, overrideWarnings, err := ComposeOverrides(overrideBases, overrideAdditions)
	if err != nil {
		return nil, nil, nil, err
	}

	return composedCatalog, composedOverrides, append(catalogWarnings, overrideWarnings...), nil
}
