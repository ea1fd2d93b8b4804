// Package jsonx parses schema-validated JSON out of untrusted free-form
// agent output. Agents routinely wrap JSON in prose or markdown despite
// instructions, so decoding is two-step: try the whole string, then fall
// back to extracting the first balanced top-level object.
//
// Parse failures are tagged as either syntax errors (no decodable JSON)
// or schema errors (decodable JSON that fails validation), and are
// always returned as values. Nothing in this package panics.
package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorKind distinguishes the two parse failure categories.
type ErrorKind int

const (
	// KindSyntax means no well-formed JSON object could be decoded.
	KindSyntax ErrorKind = iota
	// KindSchema means JSON decoded but failed field-level validation.
	KindSchema
)

// String returns the kind's name.
func (k ErrorKind) String() string {
	if k == KindSchema {
		return "schema"
	}
	return "syntax"
}

// ParseError describes a failed parse, tagged with its category.
type ParseError struct {
	Kind ErrorKind
	Msg  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

// Validatable is implemented by schema types that carry field-level
// range and length checks.
type Validatable interface {
	Validate() error
}

// ExtractFirstObject returns the first balanced top-level JSON object in
// text, scanning with quoted-string and backslash-escape awareness so
// braces inside string literals don't confuse the depth count. Returns
// "" when no complete object is present.
func ExtractFirstObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inStr := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inStr {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inStr = false
			}
			continue
		}

		switch ch {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	// Depth never returned to zero: the object is truncated.
	return ""
}

// Unmarshal decodes the first top-level JSON object in raw into v and
// validates it when v implements Validatable. It never panics and never
// returns a non-*ParseError error.
func Unmarshal(raw string, v Validatable) *ParseError {
	// Step 1: the whole string may already be the object.
	if trimmed := strings.TrimSpace(raw); strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), v); err == nil {
			if verr := v.Validate(); verr != nil {
				return &ParseError{Kind: KindSchema, Msg: verr.Error()}
			}
			return nil
		}
	}

	// Step 2: extract the first balanced object from surrounding prose.
	extracted := ExtractFirstObject(raw)
	if extracted == "" {
		return &ParseError{Kind: KindSyntax, Msg: "no JSON object found in output"}
	}
	if err := json.Unmarshal([]byte(extracted), v); err != nil {
		return &ParseError{Kind: KindSyntax, Msg: err.Error()}
	}
	if verr := v.Validate(); verr != nil {
		return &ParseError{Kind: KindSchema, Msg: verr.Error()}
	}
	return nil
}
