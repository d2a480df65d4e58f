package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of source configurations
type Loader struct {
	sourcesDir string
}

// NewLoader creates a new configuration loader
func NewLoader(sourcesDir string) *Loader {
	return &Loader{sourcesDir: sourcesDir}
}

// LoadAll loads all YAML configuration files from the sources directory
func (l *Loader) LoadAll() (map[string]*Source, error) {
	sources := make(map[string]*Source)

	if _, err := os.Stat(l.sourcesDir); os.IsNotExist(err) {
		return sources, nil // Return empty map if directory doesn't exist
	}

	files, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	// Also check for .yml extension
	ymlFiles, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		source, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(source); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", file, err)
		}

		sources[source.Name] = source
		slog.Debug("Loaded source configuration", "file", file, "source", source.Name)
	}

	return sources, nil
}

// loadFile loads a single YAML configuration file
func (l *Loader) loadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Base(path)
	source.Name = strings.TrimSuffix(strings.TrimSuffix(base, ".yaml"), ".yml")

	l.setDefaults(&source)

	return &source, nil
}

// setDefaults applies default values to configuration
func (l *Loader) setDefaults(source *Source) {
	if source.Kind == "" {
		source.Kind = KindSite
	}
	if source.Settings.Pages == 0 {
		source.Settings.Pages = 3
	}
	if source.Settings.PollInterval == 0 {
		source.Settings.PollInterval = 1800 // seconds
	}
	if source.Settings.Timeout == 0 {
		source.Settings.Timeout = 15 // seconds
	}
	if source.Settings.MinContentLength == 0 {
		source.Settings.MinContentLength = 200
	}
	if source.Settings.PolitenessDelay == 0 {
		source.Settings.PolitenessDelay = 500 // milliseconds
	}
	if source.Settings.UpsertPolicy == "" {
		source.Settings.UpsertPolicy = PolicyUpdate
	}
}

// validate validates the configuration
func (l *Loader) validate(source *Source) error {
	if source.URL == "" {
		return fmt.Errorf("source URL is required")
	}
	if source.Kind != KindSite && source.Kind != KindFeed {
		return fmt.Errorf("invalid source kind: %s", source.Kind)
	}
	if source.Settings.Pages < 0 {
		return fmt.Errorf("pages must be non-negative")
	}
	if source.Settings.PollInterval < 0 {
		return fmt.Errorf("poll interval must be non-negative")
	}
	if source.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if source.Settings.MinContentLength < 0 {
		return fmt.Errorf("min content length must be non-negative")
	}
	if source.Settings.PolitenessDelay < 0 {
		return fmt.Errorf("politeness delay must be non-negative")
	}
	if p := source.Settings.UpsertPolicy; p != PolicyUpdate && p != PolicySkip {
		return fmt.Errorf("invalid upsert policy: %s", p)
	}

	return nil
}
