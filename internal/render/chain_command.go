package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"forge/internal/collection"
)

// resolveCommandSource implements the Command chain source (§4.6, §6):
// render each argv token and the optional stdin, spawn the process, and
// capture its stdout. A non-zero exit status is not itself a failure (the
// process's output is still used); only a spawn or I/O error is.
func resolveCommandSource(goCtx context.Context, ctx *Context, src *collection.CommandSource) ([]byte, string, error) {
	if len(src.Command) == 0 {
		return nil, "", ErrCommandMissing
	}

	argv := make([]string, len(src.Command))
	for i, tok := range src.Command {
		s, err := RenderString(goCtx, ctx, tok)
		if err != nil {
			return nil, "", &NestedError{Field: fmt.Sprintf("command[%d]", i), Cause: err}
		}
		argv[i] = s
	}

	cmd := exec.CommandContext(goCtx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()

	if src.Stdin != nil {
		in, err := RenderString(goCtx, ctx, *src.Stdin)
		if err != nil {
			return nil, "", &NestedError{Field: "stdin", Cause: err}
		}
		cmd.Stdin = strings.NewReader(in)
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), "", nil
		}
		return nil, "", &CommandError{Command: argv, Cause: err}
	}

	return stdout.Bytes(), "", nil
}
