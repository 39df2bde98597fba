package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"forge/internal/prompt"
	"forge/internal/render"
	"forge/internal/store"
	"forge/internal/template"
	"forge/internal/tui"
)

var flagChunkView bool

func init() {
	renderCmd.Flags().BoolVar(&flagChunkView, "view", false, "open an interactive scrollable view of the rendered chunks")
}

var renderCmd = &cobra.Command{
	Use:   "render TEMPLATE",
	Short: "Render a template string against the selected profile",
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

		tmpl, err := template.Parse(args[0])
		if err != nil {
			return err
		}

		builder := render.NewContextBuilder(bundle.collection).
			WithStore(store.NewMemory()).
			WithPrompter(prompt.Interactive{}).
			WithOverrides(bundle.overrides)
		if profile != nil {
			builder = builder.WithProfile(*profile)
		}
		renderCtx := builder.Build()

		if flagChunkView {
			chunks := render.Expand(cmd.Context(), renderCtx, tmpl)
			view := tui.NewChunkView(chunks, 80, 20)
			if _, err := tea.NewProgram(view).Run(); err != nil {
				return err
			}
			return nil
		}

		out, err := render.Render(cmd.Context(), renderCtx, tmpl)
		if err != nil {
			return err
		}

		_, err = os.Stdout.Write(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout)
		return nil
	},
}
