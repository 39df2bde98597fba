// Package render implements the render driver, key resolver, and chain
// engine (spec §4.4-§4.6): the subsystem that expands a parsed Template
// against a TemplateContext into bytes, a string, or a per-chunk result
// list. This is the template engine's core; everything else in the
// repository (collection loading, the HTTP engine, the CLI, the TUI) is an
// external collaborator whose interface this package consumes.
package render

import (
	"context"
	"sync/atomic"

	"forge/internal/collection"
	"forge/internal/identifier"
	"forge/internal/prompt"
	"forge/internal/store"
)

// RecursionLimit is the global cap on total key expansions inside one
// render tree (§3, §9). Kept a compile-time constant, as the design notes
// recommend.
const RecursionLimit = 10

// HTTPEngine sends a recipe and returns the resulting exchange (§6). It is
// declared here, not in a separate httpengine package, so that package can
// depend on render (to render a recipe's own templated fields) without
// creating an import cycle; render never imports httpengine.
type HTTPEngine interface {
	Send(ctx context.Context, recipe *collection.Recipe, renderCtx *Context) (store.Exchange, error)
}

// Context is the render input (TemplateContext, §3): fully owned so a
// render can be handed to a worker goroutine. All fields besides the
// recursion counter are read-only for the duration of a render; the
// counter is the one shared mutable cell (§5).
type Context struct {
	Collection *collection.Collection
	Profile    *identifier.Identifier // nil = none selected
	HTTPEngine HTTPEngine             // nil = sub-requests unavailable
	Store      store.Store
	Overrides  map[string]string
	Prompter   prompt.Prompter

	recursionCount *atomic.Uint32
}

// ContextBuilder constructs a Context fluently (supplemented feature: the
// original implementation's TemplateContextBuilder). The zero value is
// ready to use.
type ContextBuilder struct {
	ctx Context
}

// NewContextBuilder starts building a Context over collection.
func NewContextBuilder(col *collection.Collection) *ContextBuilder {
	return &ContextBuilder{ctx: Context{Collection: col}}
}

// WithProfile selects a profile by ID.
func (b *ContextBuilder) WithProfile(id identifier.Identifier) *ContextBuilder {
	b.ctx.Profile = &id
	return b
}

// WithHTTPEngine attaches an HTTP engine for sub-requests.
func (b *ContextBuilder) WithHTTPEngine(e HTTPEngine) *ContextBuilder {
	b.ctx.HTTPEngine = e
	return b
}

// WithStore attaches the persistence store.
func (b *ContextBuilder) WithStore(s store.Store) *ContextBuilder {
	b.ctx.Store = s
	return b
}

// WithOverrides attaches the override map.
func (b *ContextBuilder) WithOverrides(overrides map[string]string) *ContextBuilder {
	b.ctx.Overrides = overrides
	return b
}

// WithPrompter attaches the prompt capability.
func (b *ContextBuilder) WithPrompter(p prompt.Prompter) *ContextBuilder {
	b.ctx.Prompter = p
	return b
}

// Build returns the finished Context, with a fresh recursion counter
// starting at zero.
func (b *ContextBuilder) Build() *Context {
	c := b.ctx
	c.recursionCount = new(atomic.Uint32)
	return &c
}

// ensureCounter lazily allocates the recursion counter for a Context built
// without going through ContextBuilder (e.g. a zero-value Context used in a
// unit test).
func (ctx *Context) ensureCounter() {
	if ctx.recursionCount == nil {
		ctx.recursionCount = new(atomic.Uint32)
	}
}

// incrementRecursion atomically increments the shared counter and reports
// whether the new value exceeds RecursionLimit.
func (ctx *Context) incrementRecursion() (exceeded bool) {
	ctx.ensureCounter()
	return ctx.recursionCount.Add(1) > RecursionLimit
}
