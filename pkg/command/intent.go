package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/urmzd/yeehome/pkg/command/schema"
)

// Intent domains
const (
	DomainLight   = "light"
	DomainSwitch  = "switch"
	DomainCurtain = "curtain"
	DomainScene   = "scene"
	DomainRoom    = "room"
)

// Intent actions with a fixed power mapping
const (
	ActionTurnOn  = "turn_on"
	ActionTurnOff = "turn_off"
)

// Intent locations with special meaning
const (
	LocationAll  = "all"
	LocationNone = "null"
)

// Intent is a structured voice command.
type Intent struct {
	Domain     string         `json:"domain"`
	Name       string         `json:"name"`
	Action     string         `json:"action"`
	Location   string         `json:"location,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Domains lists the recognized intent domains.
func Domains() []string {
	return []string{DomainLight, DomainSwitch, DomainCurtain, DomainScene, DomainRoom}
}

// IntentSchema is the JSON Schema every intent must satisfy. Domains are
// checked by Build, not here.
var IntentSchema = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"domain": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"action": {"type": "string", "minLength": 1},
		"location": {"type": "string"},
		"parameters": {"type": "object"}
	},
	"required": ["domain", "name", "action"]
}`)

// Payload returns the intent as a generic JSON document.
func (i Intent) Payload() (map[string]any, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks the intent against IntentSchema.
func (i Intent) Validate(v *schema.Validator) error {
	payload, err := i.Payload()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIntent, err)
	}
	if err := v.Validate(IntentSchema, payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIntent, err)
	}
	return nil
}

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// ExtractIntent pulls the intent object out of raw language-model output. A
// reasoning preamble closed by </think> is dropped, the outermost braces are
// taken and single quotes, escaped newlines and trailing commas are cleaned
// before decoding.
func ExtractIntent(raw string) (*Intent, error) {
	if _, after, ok := strings.Cut(raw, "</think>"); ok {
		raw = after
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("%w: no JSON object in model output", ErrInvalidIntent)
	}

	doc := raw[start : end+1]
	doc = strings.ReplaceAll(doc, "'", `"`)
	doc = strings.ReplaceAll(doc, `\n`, "")
	doc = trailingComma.ReplaceAllString(doc, "$1")

	var intent Intent
	if err := json.Unmarshal([]byte(strings.TrimSpace(doc)), &intent); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIntent, err)
	}
	return &intent, nil
}
