package template

import (
	"fmt"
	"strings"

	"forge/internal/identifier"
)

// ParseError reports a parse-time failure with its byte offset in the
// source string, so callers can render a human-readable position report.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte offset %d: %s", e.Pos, e.Msg)
}

func parseErr(pos int, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// parse scans s into a sequence of input chunks per the grammar in §6:
//
//	template := ( literal | escape | key )*
//	literal  := any char except '\' or '{{' opener
//	escape   := '\' then any char ('\{{' emits '{{' literally)
//	key      := '{{' body '}}'
//	body     := ident | 'chains.' ident | 'env.' ident
//	ident    := [A-Za-z0-9_-]+
//
// The ASCII delimiters ('\', '{', '}') never appear as continuation bytes of
// a multi-byte UTF-8 rune, so scanning byte-by-byte is safe for raw text.
func parse(s string) ([]InputChunk, error) {
	var chunks []InputChunk
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, RawChunk(buf.String()))
			buf.Reset()
		}
	}

	n := len(s)
	i := 0
	for i < n {
		c := s[i]

		if c == '\\' {
			if i+1 >= n {
				// Trailing lone backslash: nothing to escape, keep verbatim.
				buf.WriteByte('\\')
				i++
				continue
			}
			if i+2 < n && s[i+1] == '{' && s[i+2] == '{' {
				buf.WriteString("{{")
				i += 3
				continue
			}
			// Backslash before any other character is kept verbatim,
			// including the backslash itself.
			buf.WriteByte('\\')
			buf.WriteByte(s[i+1])
			i += 2
			continue
		}

		if c == '{' && i+1 < n && s[i+1] == '{' {
			flush()
			key, consumed, err := parseKey(s[i:], i)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, KeyInputChunk(key))
			i += consumed
			continue
		}

		buf.WriteByte(c)
		i++
	}
	flush()

	return chunks, nil
}

// parseKey parses a single "{{ ... }}" key starting at rest[0:2] == "{{".
// pos is rest's absolute offset in the original source, used for error
// reporting. Returns the parsed key and the number of bytes consumed.
func parseKey(rest string, pos int) (Key, int, error) {
	closeIdx := strings.Index(rest[2:], "}}")
	if closeIdx == -1 {
		return Key{}, 0, parseErr(pos, "unterminated key: missing closing \"}}\"")
	}
	body := rest[2 : 2+closeIdx]
	consumed := 2 + closeIdx + 2

	key, err := parseKeyBody(strings.TrimSpace(body), pos)
	if err != nil {
		return Key{}, 0, err
	}
	return key, consumed, nil
}

// parseKeyBody parses the trimmed text between "{{" and "}}" into one of
// the three recognized key forms.
func parseKeyBody(body string, pos int) (Key, error) {
	if body == "" {
		return Key{}, parseErr(pos, "empty key body")
	}

	if rest, ok := strings.CutPrefix(body, ChainPrefix); ok {
		id, err := identifier.Parse(rest)
		if err != nil {
			return Key{}, parseErr(pos, "invalid chain id %q: %v", rest, err)
		}
		return Key{Kind: KeyChain, ID: id}, nil
	}

	if rest, ok := strings.CutPrefix(body, EnvPrefix); ok {
		id, err := identifier.Parse(rest)
		if err != nil {
			return Key{}, parseErr(pos, "invalid environment variable name %q: %v", rest, err)
		}
		return Key{Kind: KeyEnvironment, ID: id}, nil
	}

	id, err := identifier.Parse(body)
	if err != nil {
		return Key{}, parseErr(pos, "invalid field name %q: %v", body, err)
	}
	return Key{Kind: KeyField, ID: id}, nil
}
