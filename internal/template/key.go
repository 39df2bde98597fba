package template

import "forge/internal/identifier"

// Kind distinguishes the three key forms recognized inside `{{ }}`.
type Kind int

const (
	// KeyField references a profile field or override: {{ident}}.
	KeyField Kind = iota
	// KeyChain references a named chain: {{chains.ident}}.
	KeyChain
	// KeyEnvironment references a process environment variable: {{env.IDENT}}.
	KeyEnvironment
)

// ChainPrefix and EnvPrefix are the fully-qualified forms used both inside
// key bodies and as override map key prefixes.
const (
	ChainPrefix = "chains."
	EnvPrefix   = "env."
)

// Key is a parsed reference to a value source.
type Key struct {
	Kind Kind
	ID   identifier.Identifier
}

// String returns the canonical in-brace form of the key, without the
// surrounding "{{" "}}" delimiters.
func (k Key) String() string {
	switch k.Kind {
	case KeyChain:
		return ChainPrefix + k.ID.String()
	case KeyEnvironment:
		return EnvPrefix + k.ID.String()
	default:
		return k.ID.String()
	}
}
