// Package collection holds the domain types authored by a user — profiles,
// recipes, and chains — plus the YAML loader that builds them. It is an
// external collaborator of the template engine (spec §1): the engine only
// ever reads a *Collection, never constructs one.
package collection

import (
	"time"

	"forge/internal/identifier"
	"forge/internal/template"
)

// Collection is the user-authored document: profiles, recipes, and chains,
// each keyed by their identifier's string form for lookup convenience.
type Collection struct {
	Profiles map[string]*Profile
	Recipes  map[string]*Recipe
	Chains   map[string]*Chain
}

// Profile maps field names to templated values, used as the default
// environment of a render. Data is a Go map, so the order in which fields
// appear in the collection document is not kept.
type Profile struct {
	ID   identifier.Identifier
	Data map[string]template.Template
}

// Recipe is a templated HTTP request definition.
type Recipe struct {
	ID      identifier.Identifier
	Method  template.Template
	URL     template.Template
	Headers map[string]template.Template
	Body    *template.Template
}

// TrimPolicy controls which end of a chain's textual result is trimmed of
// whitespace after selector/content-type post-processing.
type TrimPolicy int

const (
	TrimNone TrimPolicy = iota
	TrimStart
	TrimEnd
	TrimBoth
)

// SourceKind discriminates the tagged ChainSource variant.
type SourceKind int

const (
	SourceRequest SourceKind = iota
	SourceCommand
	SourceFile
	SourceEnvironment
	SourcePrompt
)

// ChainSource is the tagged union of the five ways a chain can produce
// bytes. Exactly one of the pointer fields matching Kind is populated.
type ChainSource struct {
	Kind        SourceKind
	Request     *RequestSource
	Command     *CommandSource
	File        *FileSource
	Environment *EnvironmentSource
	Prompt      *PromptSource
}

// TriggerKind discriminates the Request source's reuse-vs-refresh policy.
type TriggerKind int

const (
	TriggerNever TriggerKind = iota
	TriggerNoHistory
	TriggerExpire
	TriggerAlways
)

// Trigger controls whether a Request chain reuses a stored exchange or
// sends a fresh request.
type Trigger struct {
	Kind   TriggerKind
	Expire time.Duration // meaningful only when Kind == TriggerExpire
}

// SectionKind discriminates which part of an exchange a Request source reads.
type SectionKind int

const (
	SectionBody SectionKind = iota
	SectionHeader
)

// Section selects Body or a named response Header.
type Section struct {
	Kind   SectionKind
	Header string // meaningful only when Kind == SectionHeader
}

// RequestSource reads a past or fresh response of another recipe.
type RequestSource struct {
	Recipe  identifier.Identifier
	Trigger Trigger
	Section Section
}

// CommandSource spawns a process and captures its stdout.
type CommandSource struct {
	Command []template.Template
	Stdin   *template.Template
}

// FileSource reads a file's bytes.
type FileSource struct {
	Path template.Template
}

// EnvironmentSource reads a process environment variable.
type EnvironmentSource struct {
	Variable template.Template
}

// PromptSource asks the user a question.
type PromptSource struct {
	Message *template.Template
	Default *template.Template
}

// Chain is a named side-effecting value source.
type Chain struct {
	ID          identifier.Identifier
	Source      ChainSource
	Selector    string // raw path-query text; compiled lazily by internal/selector
	ContentType string
	Trim        TrimPolicy
	Sensitive   bool
}
