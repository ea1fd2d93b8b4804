package jsonx

import (
	"errors"
	"testing"
)

type scoredNote struct {
	Score int    `json:"score"`
	Note  string `json:"note"`
}

func (s *scoredNote) Validate() error {
	if s.Score < 0 || s.Score > 10 {
		return errors.New("score must be between 0 and 10")
	}
	if s.Note == "" {
		return errors.New("note must not be empty")
	}
	return nil
}

func TestExtractFirstObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare object",
			text: `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "prose before and after",
			text: `Sure, here is the JSON you asked for: {"a": 1} Hope that helps!`,
			want: `{"a": 1}`,
		},
		{
			name: "markdown fence",
			text: "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "nested objects",
			text: `{"outer": {"inner": {"deep": true}}}`,
			want: `{"outer": {"inner": {"deep": true}}}`,
		},
		{
			name: "brace inside string literal",
			text: `{"note": "use {curly} braces"}`,
			want: `{"note": "use {curly} braces"}`,
		},
		{
			name: "escaped quote inside string",
			text: `{"note": "she said \"hi}\" loudly"}`,
			want: `{"note": "she said \"hi}\" loudly"}`,
		},
		{
			name: "first of two objects",
			text: `{"a": 1} trailing {"b": 2}`,
			want: `{"a": 1}`,
		},
		{
			name: "no object",
			text: "just a plain sentence",
			want: "",
		},
		{
			name: "truncated object",
			text: `{"a": {"b": 1}`,
			want: "",
		},
		{
			name: "empty input",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFirstObject(tt.text)
			if got != tt.want {
				t.Errorf("ExtractFirstObject(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestUnmarshal(t *testing.T) {
	t.Run("whole string is the object", func(t *testing.T) {
		var v scoredNote
		if perr := Unmarshal(`{"score": 7, "note": "ok"}`, &v); perr != nil {
			t.Fatalf("unexpected error: %v", perr)
		}
		if v.Score != 7 || v.Note != "ok" {
			t.Errorf("got %+v", v)
		}
	})

	t.Run("object wrapped in prose", func(t *testing.T) {
		var v scoredNote
		raw := "Here is my review:\n```json\n{\"score\": 9, \"note\": \"solid\"}\n```\nLet me know."
		if perr := Unmarshal(raw, &v); perr != nil {
			t.Fatalf("unexpected error: %v", perr)
		}
		if v.Score != 9 || v.Note != "solid" {
			t.Errorf("got %+v", v)
		}
	})

	t.Run("no object is a syntax error", func(t *testing.T) {
		var v scoredNote
		perr := Unmarshal("I cannot produce JSON right now.", &v)
		if perr == nil {
			t.Fatal("expected error")
		}
		if perr.Kind != KindSyntax {
			t.Errorf("kind = %v, want syntax", perr.Kind)
		}
	})

	t.Run("truncated object is a syntax error", func(t *testing.T) {
		var v scoredNote
		perr := Unmarshal(`{"score": 7, "note": "cut of`, &v)
		if perr == nil {
			t.Fatal("expected error")
		}
		if perr.Kind != KindSyntax {
			t.Errorf("kind = %v, want syntax", perr.Kind)
		}
	})

	t.Run("valid JSON failing validation is a schema error", func(t *testing.T) {
		var v scoredNote
		perr := Unmarshal(`{"score": 42, "note": "too high"}`, &v)
		if perr == nil {
			t.Fatal("expected error")
		}
		if perr.Kind != KindSchema {
			t.Errorf("kind = %v, want schema", perr.Kind)
		}
	})

	t.Run("missing required field is a schema error", func(t *testing.T) {
		var v scoredNote
		perr := Unmarshal(`{"score": 3}`, &v)
		if perr == nil {
			t.Fatal("expected error")
		}
		if perr.Kind != KindSchema {
			t.Errorf("kind = %v, want schema", perr.Kind)
		}
	})

	t.Run("non-object whole string falls back to extraction", func(t *testing.T) {
		var v scoredNote
		perr := Unmarshal(`[1, 2, 3]`, &v)
		if perr == nil {
			t.Fatal("expected error")
		}
		if perr.Kind != KindSyntax {
			t.Errorf("kind = %v, want syntax", perr.Kind)
		}
	})
}

func TestErrorKindString(t *testing.T) {
	if KindSyntax.String() != "syntax" {
		t.Errorf("KindSyntax.String() = %q", KindSyntax.String())
	}
	if KindSchema.String() != "schema" {
		t.Errorf("KindSchema.String() = %q", KindSchema.String())
	}
}
