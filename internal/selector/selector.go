// Package selector implements the JSON-path-like query applied to a chain's
// structured response body (spec §6 "Selector queries"). It is a thin
// wrapper over gjson: compile is implicit (gjson paths need no pre-compile
// step), and Query reports how many values matched so the caller can enforce
// the "exactly one result" contract.
package selector

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Query applies path against data (assumed to be JSON) and returns the
// canonical textual form of the single matching value. count reports how
// many values the query actually matched, so callers can build the right
// QueryError when it isn't exactly one.
func Query(data []byte, path string) (text string, count int, err error) {
	if !gjson.ValidBytes(data) {
		return "", 0, errInvalidJSON
	}
	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return "", 0, nil
	}

	// gjson represents a multi-match query (using "#" array-iteration
	// syntax) as a single Result whose value is a JSON array of matches.
	// Any other existing result is exactly one match, even when its own
	// value happens to be an array or object.
	if result.IsArray() && strings.Contains(path, "#") {
		matches := result.Array()
		if len(matches) != 1 {
			return "", len(matches), nil
		}
		return stringify(matches[0]), 1, nil
	}

	return stringify(result), 1, nil
}

// stringify renders a gjson.Result to its canonical textual form: string
// primitives unquoted, numbers/bools as their literal text, and arrays or
// objects re-serialized to compact JSON (gjson.Result.Raw holds the source
// text as written, so its whitespace is removed with json.Compact).
func stringify(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number, gjson.True, gjson.False, gjson.Null:
		return r.Raw
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(r.Raw)); err != nil {
			return r.Raw
		}
		return buf.String()
	}
}

type invalidJSONError struct{}

func (invalidJSONError) Error() string { return "content is not valid JSON" }

var errInvalidJSON = invalidJSONError{}
