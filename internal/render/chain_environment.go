package render

import (
	"context"
	"os"
	"unicode/utf8"

	"forge/internal/bytesutil"
	"forge/internal/collection"
)

// resolveEnvironmentSource implements the Environment chain source (§4.6,
// §6): render the variable name template and read it from the process
// environment. A missing variable yields an empty result, not an error;
// this is the chain form, distinct from the deprecated env.IDENT key form
// in resolver.go.
func resolveEnvironmentSource(goCtx context.Context, ctx *Context, src *collection.EnvironmentSource) ([]byte, string, error) {
	name, err := RenderString(goCtx, ctx, src.Variable)
	if err != nil {
		return nil, "", &NestedError{Field: "variable", Cause: err}
	}

	val, ok := os.LookupEnv(name)
	if !ok {
		return nil, "", nil
	}
	if !utf8.ValidString(val) {
		return nil, "", &EnvironmentVariableError{Variable: name, Cause: bytesutil.ErrInvalidUTF8}
	}
	return []byte(val), "", nil
}
