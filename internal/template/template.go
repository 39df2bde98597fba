// Package template implements the parser and immutable value type for the
// small templating language used in profile fields, recipes, and chain
// arguments: {{ident}}, {{chains.ident}}, and {{env.IDENT}}. Rendering a
// Template against a context is the render driver's job (internal/render);
// this package only covers the lexical and structural layer (§4.2, §4.3).
package template

import "strings"

// Template is an immutable ordered sequence of input chunks. Two templates
// parsed from the same source string yield the same chunk sequence; the
// original source string is not retained.
type Template struct {
	chunks []InputChunk
}

// Parse converts a source string into a Template. Consecutive literal
// characters coalesce into a single Raw chunk; each key produces exactly
// one Key chunk. Empty input yields an empty Template.
func Parse(s string) (Template, error) {
	chunks, err := parse(s)
	if err != nil {
		return Template{}, err
	}
	return Template{chunks: chunks}, nil
}

// Raw treats the entire string as a single literal chunk without parsing
// it for keys. Used when ingesting external formats whose strings are not
// templates in this language.
func Raw(s string) Template {
	if s == "" {
		return Template{}
	}
	return Template{chunks: []InputChunk{RawChunk(s)}}
}

// Chunks returns the template's input chunks in source order.
func (t Template) Chunks() []InputChunk {
	return t.chunks
}

// IsEmpty reports whether the template has no chunks (parsed from "").
func (t Template) IsEmpty() bool {
	return len(t.chunks) == 0
}

// String serializes the template back to a canonical source form: Raw
// segments with "{{" escaped as "\{{", and Key segments in their canonical
// "{{...}}" form. Parsing the result yields the same chunk sequence.
func (t Template) String() string {
	var b strings.Builder
	for _, c := range t.chunks {
		if c.IsKey() {
			b.WriteString("{{")
			b.WriteString(c.Key().String())
			b.WriteString("}}")
		} else {
			b.WriteString(escapeRaw(c.Raw()))
		}
	}
	return b.String()
}

// escapeRaw re-inserts a backslash before every literal "{{" in s so that
// re-parsing the serialized form does not mistake it for a key opener.
func escapeRaw(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return strings.ReplaceAll(s, "{{", `\{{`)
}
