package render

import (
	"context"
	"os"

	"forge/internal/collection"
)

// resolveFileSource implements the File chain source (§4.6, §6): render the
// path template and read the file's bytes verbatim.
func resolveFileSource(goCtx context.Context, ctx *Context, src *collection.FileSource) ([]byte, string, error) {
	path, err := RenderString(goCtx, ctx, src.Path)
	if err != nil {
		return nil, "", &NestedError{Field: "path", Cause: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &FileError{Path: path, Cause: err}
	}
	return data, "", nil
}
