// Package schema validates intent documents against JSON Schema.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrSchema indicates the schema document itself is unusable.
var ErrSchema = errors.New("invalid schema")

// Validator validates JSON documents against JSON Schema documents.
// Compiled schemas are cached keyed by their raw bytes.
type Validator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewValidator creates a new Validator with an empty cache.
func NewValidator() *Validator {
	return &Validator{
		cache: make(map[string]*jsonschema.Schema),
	}
}

// Compile compiles and caches schemaDoc without validating anything.
func (v *Validator) Compile(schemaDoc json.RawMessage) error {
	_, err := v.compile(schemaDoc)
	return err
}

// Validate checks doc against schemaDoc. An empty schema accepts anything.
// Validation failures are prefixed with the failing instance locations.
func (v *Validator) Validate(schemaDoc json.RawMessage, doc any) error {
	if isEmptySchema(schemaDoc) {
		return nil
	}

	compiled, err := v.compile(schemaDoc)
	if err != nil {
		return err
	}

	if err := compiled.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%s: %w", strings.Join(locations(verr), ", "), err)
		}
		return err
	}
	return nil
}

func isEmptySchema(doc json.RawMessage) bool {
	s := strings.TrimSpace(string(doc))
	return s == "" || s == "{}" || s == "null"
}

func (v *Validator) compile(schemaDoc json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schemaDoc)

	v.mu.RLock()
	if s, ok := v.cache[key]; ok {
		v.mu.RUnlock()
		return s, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.cache[key]; ok {
		return s, nil
	}

	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("intent.json", parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	compiled, err := c.Compile("intent.json")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}

	v.cache[key] = compiled
	return compiled, nil
}

// locations collects the distinct instance locations of the leaf causes.
func locations(verr *jsonschema.ValidationError) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := "/" + strings.Join(e.InstanceLocation, "/")
			if !seen[loc] {
				seen[loc] = true
				out = append(out, loc)
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return out
}
