package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"forge/internal/collection"
	"forge/internal/identifier"
)

// collectionBundle bundles a loaded collection with the overrides parsed
// from the command line, the two inputs every subcommand needs to build a
// render.Context.
type collectionBundle struct {
	collection *collection.Collection
	overrides  map[string]string
}

var (
	flagFiles     []string
	flagProfile   string
	flagOverrides []string
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Render and send templated HTTP requests",
	Long:  appName + " renders profile/recipe/chain templates and sends the requests they describe.",
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&flagFiles, "file", "f", nil, "collection file to load (repeatable)")
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "profile to select")
	rootCmd.PersistentFlags().StringArrayVarP(&flagOverrides, "override", "o", nil, "override a field, chain, or env key (key=value, repeatable)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(listCmd)
}

// load resolves the config directory, discovers collection files, and
// parses and merges them into one Collection.
func load() (col *collectionBundle, err error) {
	configDir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	files, err := resolveCollectionFiles(configDir, flagFiles)
	if err != nil {
		return nil, err
	}
	c, err := loadCollection(files)
	if err != nil {
		return nil, err
	}
	overrides, err := parseOverrides(flagOverrides)
	if err != nil {
		return nil, err
	}
	return &collectionBundle{collection: c, overrides: overrides}, nil
}

// selectedProfile parses --profile, if given.
func selectedProfile() (*identifier.Identifier, error) {
	if flagProfile == "" {
		return nil, nil
	}
	id, err := identifier.Parse(flagProfile)
	if err != nil {
		return nil, fmt.Errorf("--profile: %w", err)
	}
	return &id, nil
}

// parseOverrides parses "key=value" flag arguments into an override map.
func parseOverrides(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--override: expected key=value, got %q", kv)
		}
		out[k] = v
	}
	return out, nil
}
