package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func intentSchema() json.RawMessage {
	return json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"domain": {"type": "string", "minLength": 1},
			"name": {"type": "string", "minLength": 1},
			"action": {"type": "string"},
			"parameters": {"type": "object"}
		},
		"required": ["domain", "name", "action"]
	}`)
}

func TestValidate_ValidIntent(t *testing.T) {
	v := NewValidator()

	err := v.Validate(intentSchema(), map[string]any{
		"domain":     "light",
		"name":       "客厅灯带",
		"action":     "turn_on",
		"parameters": map[string]any{"l": json.Number("80")},
	})
	if err != nil {
		t.Errorf("expected valid intent, got: %v", err)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	v := NewValidator()

	err := v.Validate(intentSchema(), map[string]any{
		"domain": "light",
		"action": "turn_on",
	})
	if err == nil {
		t.Error("expected validation error for missing name")
	}
}

func TestValidate_EmptyName(t *testing.T) {
	v := NewValidator()

	err := v.Validate(intentSchema(), map[string]any{
		"domain": "light",
		"name":   "",
		"action": "turn_on",
	})
	if err == nil {
		t.Fatal("expected validation error for empty name")
	}
	if !strings.Contains(err.Error(), "/name") {
		t.Errorf("error should point at /name, got: %v", err)
	}
}

func TestValidate_WrongType(t *testing.T) {
	v := NewValidator()

	err := v.Validate(intentSchema(), map[string]any{
		"domain":     "light",
		"name":       "灯",
		"action":     "turn_on",
		"parameters": "bright",
	})
	if err == nil {
		t.Error("expected validation error for non-object parameters")
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	v := NewValidator()

	for _, doc := range []json.RawMessage{nil, json.RawMessage(`{}`), json.RawMessage(` null `)} {
		if err := v.Validate(doc, map[string]any{"anything": "goes"}); err != nil {
			t.Errorf("empty schema %q should skip validation, got: %v", doc, err)
		}
	}
}

func TestCompile_BadSchema(t *testing.T) {
	v := NewValidator()

	err := v.Compile(json.RawMessage(`{"type": 12}`))
	if !errors.Is(err, ErrSchema) {
		t.Errorf("expected ErrSchema, got: %v", err)
	}
	err = v.Compile(json.RawMessage(`{not json`))
	if !errors.Is(err, ErrSchema) {
		t.Errorf("expected ErrSchema for malformed document, got: %v", err)
	}
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()
	schema := intentSchema()

	if err := v.Compile(schema); err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(schema, map[string]any{"domain": "scene", "name": "回家", "action": "excute"}); err != nil {
		t.Fatal(err)
	}

	v.mu.RLock()
	cacheSize := len(v.cache)
	v.mu.RUnlock()
	if cacheSize != 1 {
		t.Errorf("expected 1 cached schema, got %d", cacheSize)
	}
}
