package render

import (
	"bytes"
	"context"
	"fmt"
	"unicode"

	"forge/internal/collection"
	"forge/internal/selector"
)

// runChain produces a chain's bytes (§4.6, §6): obtain raw bytes from the
// chain's source, apply an optional selector query, apply an optional trim,
// and return the result. The caller (resolveChainKey) attaches the chain's
// sensitive flag to the output chunk.
func runChain(goCtx context.Context, ctx *Context, def *collection.Chain) ([]byte, error) {
	raw, contentTypeHint, err := obtainRawBytes(goCtx, ctx, def)
	if err != nil {
		return nil, err
	}

	out := raw
	if def.Selector != "" {
		contentType := def.ContentType
		if contentType == "" {
			contentType = contentTypeHint
		}
		if contentType == "" {
			return nil, ErrUnknownContentType
		}

		text, count, qerr := selector.Query(out, def.Selector)
		if qerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseResponse, qerr)
		}
		if count != 1 {
			return nil, &QueryError{Count: count}
		}
		out = []byte(text)
	}

	return applyTrim(out, def.Trim), nil
}

// obtainRawBytes dispatches to the source-specific resolver for def's
// ChainSource variant. contentType is only ever non-empty for a Request
// source reading Body, where the upstream response's Content-Type can seed
// selector post-processing when the chain omits an explicit one.
func obtainRawBytes(goCtx context.Context, ctx *Context, def *collection.Chain) (data []byte, contentType string, err error) {
	switch def.Source.Kind {
	case collection.SourceRequest:
		return resolveRequestSource(goCtx, ctx, def.Source.Request)
	case collection.SourceCommand:
		return resolveCommandSource(goCtx, ctx, def.Source.Command)
	case collection.SourceFile:
		return resolveFileSource(goCtx, ctx, def.Source.File)
	case collection.SourceEnvironment:
		return resolveEnvironmentSource(goCtx, ctx, def.Source.Environment)
	case collection.SourcePrompt:
		return resolvePromptSource(goCtx, ctx, def.Source.Prompt, def.Sensitive)
	default:
		panic("render: unknown chain source kind")
	}
}

// applyTrim trims ASCII/Unicode whitespace from the configured end(s) of b.
func applyTrim(b []byte, policy collection.TrimPolicy) []byte {
	switch policy {
	case collection.TrimStart:
		return bytes.TrimLeftFunc(b, unicode.IsSpace)
	case collection.TrimEnd:
		return bytes.TrimRightFunc(b, unicode.IsSpace)
	case collection.TrimBoth:
		return bytes.TrimSpace(b)
	default:
		return b
	}
}
