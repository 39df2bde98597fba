package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"forge/internal/collection"
)

// appName is the single source of truth for the application name. Derived
// identifiers (env vars, config paths) are computed from it.
const appName = "forge"

var envCollectionFiles = strings.ToUpper(appName) + "_COLLECTIONS"

// resolveConfigDir returns the base config directory for the application.
// Priority: $FORGE_CONFIG_DIR > $XDG_CONFIG_HOME/forge > ~/.config/forge
func resolveConfigDir() (string, error) {
	if v := os.Getenv(strings.ToUpper(appName) + "_CONFIG_DIR"); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// resolveCollectionFiles returns all collection documents to load. Order:
// configDir/collections/*.yml|*.yaml, then $FORGE_COLLECTIONS (colon
// separated), then the --file flags, which come last so they can add to or
// override what config-dir discovery found.
func resolveCollectionFiles(configDir string, flagFiles []string) ([]string, error) {
	autoFiles, err := globYAML(filepath.Join(configDir, "collections"))
	if err != nil {
		return nil, err
	}
	files := autoFiles
	files = append(files, splitColon(os.Getenv(envCollectionFiles))...)
	files = append(files, flagFiles...)
	return files, nil
}

// globYAML returns sorted *.yml / *.yaml files in dir. Returns nil without
// error if dir does not exist.
func globYAML(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

// splitColon splits a colon-separated string, filtering empty parts.
func splitColon(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadCollection reads every file and merges the resulting collections.
// Later files win on key collisions within a given section.
func loadCollection(files []string) (*collection.Collection, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf(
			"no collection files found: add *.yml files to ~/.config/%s/collections/, "+
				"set $%s, or use --file", appName, envCollectionFiles)
	}

	merged := &collection.Collection{
		Profiles: map[string]*collection.Profile{},
		Recipes:  map[string]*collection.Recipe{},
		Chains:   map[string]*collection.Chain{},
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("collection file %s: %w", f, err)
		}
		col, err := collection.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("collection file %s: %w", f, err)
		}
		for k, v := range col.Profiles {
			merged.Profiles[k] = v
		}
		for k, v := range col.Recipes {
			merged.Recipes[k] = v
		}
		for k, v := range col.Chains {
			merged.Chains[k] = v
		}
	}

	return merged, nil
}
