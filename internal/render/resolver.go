package render

import (
	"context"
	"os"
	"unicode/utf8"

	"forge/internal/bytesutil"
	"forge/internal/identifier"
	"forge/internal/template"
)

// resolveKey dispatches a parsed key to its value producer (§4.5).
func resolveKey(goCtx context.Context, ctx *Context, key template.Key) template.Chunk {
	switch key.Kind {
	case template.KeyField:
		return resolveField(goCtx, ctx, key.ID)
	case template.KeyChain:
		return resolveChainKey(goCtx, ctx, key.ID)
	case template.KeyEnvironment:
		return resolveEnvironmentKey(ctx, key.ID)
	default:
		panic("render: unknown key kind")
	}
}

// resolveField implements the Field(ident) lookup order: overrides first,
// then the selected profile's data. A match in either position that is
// itself templated is recursively rendered (nested errors wrap as
// FieldNested).
func resolveField(goCtx context.Context, ctx *Context, field identifier.Identifier) template.Chunk {
	name := field.String()

	if raw, ok := ctx.Overrides[name]; ok {
		return renderFieldValue(goCtx, ctx, name, raw)
	}

	if ctx.Profile == nil {
		return template.ErrorChunk(ErrNoProfileSelected)
	}
	profile, ok := ctx.Collection.Profiles[ctx.Profile.String()]
	if !ok {
		return template.ErrorChunk(&ProfileUnknownError{ProfileID: ctx.Profile.String()})
	}
	tmpl, ok := profile.Data[name]
	if !ok {
		return template.ErrorChunk(&FieldUnknownError{Field: name})
	}

	chunks := Expand(goCtx, ctx, tmpl)
	b, err := flatten(chunks)
	if err != nil {
		return template.ErrorChunk(&FieldNestedError{Field: name, Cause: err})
	}
	return template.Rendered(b, false)
}

// renderFieldValue parses an override's string value as a template and
// recursively renders it in the same context.
func renderFieldValue(goCtx context.Context, ctx *Context, field, raw string) template.Chunk {
	tmpl, err := template.Parse(raw)
	if err != nil {
		return template.ErrorChunk(&FieldNestedError{Field: field, Cause: err})
	}
	chunks := Expand(goCtx, ctx, tmpl)
	b, err := flatten(chunks)
	if err != nil {
		return template.ErrorChunk(&FieldNestedError{Field: field, Cause: err})
	}
	return template.Rendered(b, false)
}

// resolveChainKey implements the Chain(id) lookup: an override under
// "chains.<id>" short-circuits to its literal value without invoking the
// chain engine at all, bypassing any side effects.
func resolveChainKey(goCtx context.Context, ctx *Context, id identifier.Identifier) template.Chunk {
	name := id.String()

	if raw, ok := ctx.Overrides[template.ChainPrefix+name]; ok {
		sensitive := false
		if def, ok := ctx.Collection.Chains[name]; ok {
			sensitive = def.Sensitive
		}
		return template.Rendered([]byte(raw), sensitive)
	}

	def, ok := ctx.Collection.Chains[name]
	if !ok {
		return template.ErrorChunk(&ChainWrapError{ChainID: name, Cause: ErrChainUnknown})
	}

	b, err := runChain(goCtx, ctx, def)
	if err != nil {
		return template.ErrorChunk(&ChainWrapError{ChainID: name, Cause: err})
	}
	return template.Rendered(b, def.Sensitive)
}

// resolveEnvironmentKey implements the deprecated env.IDENT key form: an
// override under "env.<ident>" short-circuits, otherwise the process
// environment is read directly. A missing variable renders as empty, not
// an error.
func resolveEnvironmentKey(ctx *Context, variable identifier.Identifier) template.Chunk {
	name := variable.String()

	if raw, ok := ctx.Overrides[template.EnvPrefix+name]; ok {
		return template.Rendered([]byte(raw), false)
	}

	val, present := os.LookupEnv(name)
	if !present {
		return template.Rendered(nil, false)
	}
	if !utf8.ValidString(val) {
		return template.ErrorChunk(&EnvironmentVariableError{Variable: name, Cause: bytesutil.ErrInvalidUTF8})
	}
	return template.Rendered([]byte(val), false)
}
