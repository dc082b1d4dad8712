// File path: internal/insight/extract.go
package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Failure classes for the text-to-object stage of validation.
var (
	// ErrNoJSONFound means the raw text contains no brace-delimited span.
	ErrNoJSONFound = errors.New("no JSON object found in provider output")
	// ErrInvalidJSON means the extracted span failed to decode.
	ErrInvalidJSON = errors.New("extracted span is not valid JSON")
	// ErrNotAnObject means the span decoded to an array or scalar.
	ErrNotAnObject = errors.New("extracted JSON is not an object")
)

// ExtractJSONObject locates the first '{' and the last '}' in raw text
// and returns the enclosed span. Providers tend to wrap their payload in
// conversational prose; this heuristic strips that wrapper. It does not
// cope with brace characters inside the wrapper prose itself; when the
// span fails to decode the caller falls back, which bounds the damage.
func ExtractJSONObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 || end < start {
		return "", ErrNoJSONFound
	}
	return raw[start : end+1], nil
}

// decodeObject runs extraction and parsing, returning the decoded
// top-level object or one of the failure classes above.
func decodeObject(raw string) (map[string]interface{}, error) {
	span, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, ErrNotAnObject
	}
	return obj, nil
}
