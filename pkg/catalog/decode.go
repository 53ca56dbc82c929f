package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// decodeInto maps a generic YAML value onto a typed target.
func decodeInto(input any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// documents splits a YAML stream into its documents.
func documents(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	var docs []any
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
}

// sourceFiles expands a path into the YAML/JSON files it names, sorted by name.
func sourceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	slices.Sort(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no catalog files in %s", path)
	}
	return files, nil
}

func configError(source string, err error) error {
	var cfgErr *domain.ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}
	var msErr *mapstructure.Error
	if errors.As(err, &msErr) {
		return &domain.ConfigError{Source: source, Problems: msErr.Errors}
	}
	return &domain.ConfigError{Source: source, Problems: []string{err.Error()}}
}
