package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the profiles, recipes, and chains in the loaded collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := load()
		if err != nil {
			return err
		}

		printNames("Profiles", keysOfProfiles(bundle))
		printNames("Recipes", keysOfRecipes(bundle))
		printNames("Chains", keysOfChains(bundle))
		return nil
	},
}

func keysOfProfiles(b *collectionBundle) []string {
	names := make([]string, 0, len(b.collection.Profiles))
	for k := range b.collection.Profiles {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func keysOfRecipes(b *collectionBundle) []string {
	names := make([]string, 0, len(b.collection.Recipes))
	for k := range b.collection.Recipes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func keysOfChains(b *collectionBundle) []string {
	names := make([]string, 0, len(b.collection.Chains))
	for k := range b.collection.Chains {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func printNames(section string, names []string) {
	fmt.Printf("%s:\n", section)
	if len(names) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
}
