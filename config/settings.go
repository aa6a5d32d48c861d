package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// ErrMissingOption is returned when a required settings option is absent.
var ErrMissingOption = errors.New("missing required option")

const (
	optionsSection  = "options"
	keyURLColumn    = "column_url_github"
	keyDirColumn    = "column_dir_name"
	keyHeaderColumn = "headers"
)

type yamlSettings struct {
	Options struct {
		URLColumn string   `yaml:"column_url_github"`
		DirColumn string   `yaml:"column_dir_name"`
		Headers   []string `yaml:"headers"`
	} `yaml:"options"`
}

// LoadSettings reads the column options from an INI or YAML settings file.
// The format is chosen by extension; anything other than .yaml/.yml is INI.
func LoadSettings(path string) (*ColumnsConfig, error) {
	var (
		cols *ColumnsConfig
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cols, err = loadYAML(path)
	default:
		cols, err = loadINI(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings %s: %w", path, err)
	}
	return cols, nil
}

func loadINI(path string) (*ColumnsConfig, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	section, err := file.GetSection(optionsSection)
	if err != nil {
		return nil, fmt.Errorf("%w: section [%s]", ErrMissingOption, optionsSection)
	}

	var headers []string
	if section.HasKey(keyHeaderColumn) {
		headers = section.Key(keyHeaderColumn).Strings(",")
	}

	return newColumns(
		section.Key(keyURLColumn).String(),
		section.Key(keyDirColumn).String(),
		headers,
	)
}

func loadYAML(path string) (*ColumnsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s yamlSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("malformed yaml: %w", err)
	}
	return newColumns(s.Options.URLColumn, s.Options.DirColumn, s.Options.Headers)
}

// newColumns validates the options and builds the ordered header list.
// URL and directory columns are prepended when headers does not name them.
func newColumns(urlColumn, dirColumn string, headers []string) (*ColumnsConfig, error) {
	urlColumn = strings.TrimSpace(urlColumn)
	dirColumn = strings.TrimSpace(dirColumn)
	if urlColumn == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingOption, keyURLColumn)
	}
	if dirColumn == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingOption, keyDirColumn)
	}
	if urlColumn == dirColumn {
		return nil, fmt.Errorf("%s and %s must differ (both %q)", keyURLColumn, keyDirColumn, urlColumn)
	}

	seen := make(map[string]bool)
	var ordered []string
	add := func(h string) {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			return
		}
		seen[h] = true
		ordered = append(ordered, h)
	}

	for _, h := range headers {
		add(h)
	}
	if !seen[dirColumn] {
		ordered = append([]string{dirColumn}, ordered...)
		seen[dirColumn] = true
	}
	if !seen[urlColumn] {
		ordered = append([]string{urlColumn}, ordered...)
		seen[urlColumn] = true
	}

	return &ColumnsConfig{
		URL:       urlColumn,
		Directory: dirColumn,
		Headers:   ordered,
	}, nil
}
