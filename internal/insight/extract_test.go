// File path: internal/insight/extract_test.go
package insight

import (
	"errors"
	"testing"
)

func TestExtractJSONObjectFromWrapperProse(t *testing.T) {
	raw := "Here is the JSON:\n{\"positiveObservation\": \"ok\"}\nThanks!"
	span, err := ExtractJSONObject(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if span != `{"positiveObservation": "ok"}` {
		t.Fatalf("unexpected span: %q", span)
	}
}

func TestExtractJSONObjectNoBraces(t *testing.T) {
	if _, err := ExtractJSONObject("no json here at all"); !errors.Is(err, ErrNoJSONFound) {
		t.Fatalf("expected ErrNoJSONFound, got %v", err)
	}
}

func TestExtractJSONObjectReversedBraces(t *testing.T) {
	if _, err := ExtractJSONObject("} backwards {"); !errors.Is(err, ErrNoJSONFound) {
		t.Fatalf("expected ErrNoJSONFound for reversed braces, got %v", err)
	}
}

func TestDecodeObjectInvalidJSON(t *testing.T) {
	_, err := decodeObject("prefix {not valid json} suffix")
	if !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}
}

func TestDecodeObjectAcceptsNestedBraces(t *testing.T) {
	obj, err := decodeObject(`{"outer": {"inner": 1}}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := obj["outer"]; !ok {
		t.Fatalf("expected outer key, got %v", obj)
	}
}
