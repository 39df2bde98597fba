package render

import (
	"context"

	"forge/internal/collection"
	"forge/internal/prompt"
)

// resolvePromptSource implements the Prompt chain source (§4.6, §4.7, §6):
// render the message and optional default, ask the Prompter, and fall back
// to the default when the user gives no answer. With no Prompter attached
// (e.g. a non-interactive render), the default is used directly if present,
// otherwise the chain fails. sensitive is the chain's own Sensitive flag,
// passed through to the Prompter so it can mask terminal echo.
func resolvePromptSource(goCtx context.Context, ctx *Context, src *collection.PromptSource, sensitive bool) ([]byte, string, error) {
	var message, def string
	hasDefault := false

	if src.Message != nil {
		m, err := RenderString(goCtx, ctx, *src.Message)
		if err != nil {
			return nil, "", &NestedError{Field: "message", Cause: err}
		}
		message = m
	}
	if src.Default != nil {
		d, err := RenderString(goCtx, ctx, *src.Default)
		if err != nil {
			return nil, "", &NestedError{Field: "default", Cause: err}
		}
		def = d
		hasDefault = true
	}

	if ctx.Prompter == nil {
		if hasDefault {
			return []byte(def), "", nil
		}
		return nil, "", ErrPromptNoResponse
	}

	replyCh := ctx.Prompter.Prompt(prompt.Request{
		Message:    message,
		Default:    def,
		HasDefault: hasDefault,
		Sensitive:  sensitive,
	})

	var reply prompt.Reply
	select {
	case reply = <-replyCh:
	case <-goCtx.Done():
		return nil, "", goCtx.Err()
	}

	if reply.OK {
		return []byte(reply.Value), "", nil
	}
	if hasDefault {
		return []byte(def), "", nil
	}
	return nil, "", ErrPromptNoResponse
}
