package render

import (
	"bytes"
	"context"
	"sync"

	"forge/internal/bytesutil"
	"forge/internal/template"
)

// Expand renders every chunk of tmpl in parallel, preserving source order in
// the result (§4.4, §5). Raw chunks are emitted as a fresh byte copy of the
// parsed literal text on every render, not shared with the Template; Key chunks
// each atomically claim one slot against the shared recursion counter before
// being dispatched to the key resolver.
func Expand(goCtx context.Context, ctx *Context, tmpl template.Template) []template.Chunk {
	chunks := tmpl.Chunks()
	results := make([]template.Chunk, len(chunks))

	var wg sync.WaitGroup
	for i, c := range chunks {
		if !c.IsKey() {
			results[i] = template.Raw([]byte(c.Raw()))
			continue
		}
		wg.Add(1)
		go func(i int, key template.Key) {
			defer wg.Done()
			results[i] = expandKey(goCtx, ctx, key)
		}(i, c.Key())
	}
	wg.Wait()

	return results
}

// expandKey enforces the recursion limit before resolving a single key.
func expandKey(goCtx context.Context, ctx *Context, key template.Key) template.Chunk {
	if ctx.incrementRecursion() {
		return template.ErrorChunk(ErrRecursionLimit)
	}
	return resolveKey(goCtx, ctx, key)
}

// flatten concatenates a chunk list's bytes, failing on the first Error
// chunk encountered in source order.
func flatten(chunks []template.Chunk) ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range chunks {
		if c.Kind == template.ChunkErr {
			return nil, c.Err
		}
		buf.Write(c.Bytes)
	}
	return buf.Bytes(), nil
}

// Render expands tmpl and flattens it to bytes, failing on the first chunk
// error (§4.4).
func Render(goCtx context.Context, ctx *Context, tmpl template.Template) ([]byte, error) {
	return flatten(Expand(goCtx, ctx, tmpl))
}

// RenderString is Render plus a UTF-8 validation of the result (§4.3).
func RenderString(goCtx context.Context, ctx *Context, tmpl template.Template) (string, error) {
	b, err := Render(goCtx, ctx, tmpl)
	if err != nil {
		return "", err
	}
	return bytesutil.ToString(b)
}
