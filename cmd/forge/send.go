package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"forge/internal/httpengine"
	"forge/internal/identifier"
	"forge/internal/prompt"
	"forge/internal/render"
	"forge/internal/store"
)

var sendCmd = &cobra.Command{
	Use:   "send RECIPE",
	Short: "Render and send a recipe's request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := load()
		if err != nil {
			return err
		}
		profile, err := selectedProfile()
		if err != nil {
			return err
		}

		recipeID, err := identifier.Parse(args[0])
		if err != nil {
			return fmt.Errorf("recipe: %w", err)
		}
		recipe, ok := bundle.collection.Recipes[recipeID.String()]
		if !ok {
			return fmt.Errorf("unknown recipe %q", recipeID.String())
		}

		client := httpengine.NewClient()
		builder := render.NewContextBuilder(bundle.collection).
			WithHTTPEngine(client).
			WithStore(store.NewMemory()).
			WithPrompter(prompt.Interactive{}).
			WithOverrides(bundle.overrides)
		if profile != nil {
			builder = builder.WithProfile(*profile)
		}
		renderCtx := builder.Build()

		exchange, err := client.Send(cmd.Context(), recipe, renderCtx)
		if err != nil {
			return err
		}

		fmt.Printf("%d\n", exchange.Status)
		for name, val := range exchange.Headers {
			fmt.Printf("%s: %s\n", name, val)
		}
		fmt.Println()
		fmt.Println(string(exchange.Body))
		return nil
	},
}
