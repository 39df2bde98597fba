package prompt

import (
	"strings"

	"github.com/charmbracelet/huh"
)

// Interactive prompts the user on the terminal via huh. It is the CLI's
// real Prompter implementation, grounded in the same library the teacher
// already depends on for interactive input.
type Interactive struct{}

// Prompt implements Prompter by running a single huh.Input field and
// sending its result on the returned channel.
func (Interactive) Prompt(req Request) <-chan Reply {
	ch := make(chan Reply, 1)
	go func() {
		defer close(ch)

		var answer string
		input := huh.NewInput().
			Title(req.Message).
			Value(&answer)
		if req.HasDefault {
			input = input.Placeholder(req.Default)
		}
		if req.Sensitive {
			input = input.EchoMode(huh.EchoModePassword)
		}

		if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
			ch <- Reply{OK: false}
			return
		}

		answer = strings.TrimRight(answer, "\r\n")
		if answer == "" {
			ch <- Reply{OK: false}
			return
		}
		ch <- Reply{Value: answer, OK: true}
	}()
	return ch
}
