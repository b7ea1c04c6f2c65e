package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"stress-quiz/internal/domain"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Loader reads <name>.json (or .yaml/.yml) from a directory.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

func (l *Loader) LoadDataset(_ context.Context, name string) (domain.Dataset, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return domain.Dataset{}, fmt.Errorf("%w: invalid name %q", domain.ErrDatasetNotFound, name)
	}
	for _, ext := range extensions {
		path := filepath.Join(l.dir, name+ext)
		ds, err := Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return ds, err
	}
	return domain.Dataset{}, fmt.Errorf("%w: %s in %s", domain.ErrDatasetNotFound, name, l.dir)
}

// Read decodes a single dataset file; the extension picks JSON or YAML.
func Read(path string) (domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Dataset{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	ds, err := domain.DecodeDataset(data)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}

// yamlToJSON re-encodes a YAML document so the dataset decoder sees one shape.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
