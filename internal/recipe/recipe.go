// Package recipe replays a declarative list of builder steps, written as JSON
// or YAML, onto a message.Message.
package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lojasmm/chatmsg/message"
)

var (
	ErrUnknownStep = errors.New("unknown step")
	ErrInvalidStep = errors.New("invalid step")
)

// Step is one builder call: "op" names the operation, the other keys are its
// arguments.
type Step map[string]any

// Op returns the operation name, or "" if it is missing or not a string.
func (s Step) Op() string {
	op, _ := s["op"].(string)
	return op
}

// Seed is the optional initial text or html block of a recipe.
type Seed struct {
	Type    string         `json:"type" yaml:"type"`
	Content string         `json:"content" yaml:"content"`
	Fields  map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Recipe is a complete message description.
type Recipe struct {
	Seed  *Seed  `json:"seed,omitempty" yaml:"seed,omitempty"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Parse decodes a JSON recipe. Unknown top-level keys are rejected.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("parsing recipe: %w", err)
	}
	return &r, nil
}

// ParseYAML decodes a YAML recipe. Unknown top-level keys are rejected.
func ParseYAML(data []byte) (*Recipe, error) {
	var r Recipe
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("parsing recipe: %w", err)
	}
	return &r, nil
}

// Load reads a recipe file. Files ending in .yaml or .yml are YAML, anything
// else is JSON.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// NewMessage returns an empty message, or one holding the seed block.
func (s *Seed) NewMessage() (*message.Message, error) {
	if s == nil {
		return message.New(), nil
	}
	var fields []message.Fields
	if s.Fields != nil {
		fields = append(fields, s.Fields)
	}
	switch s.Type {
	case "", string(message.TypeText):
		return message.New(message.TextSeed(s.Content, fields...)), nil
	case string(message.TypeHTML):
		return message.New(message.HTMLSeed(s.Content, fields...)), nil
	default:
		return nil, fmt.Errorf("%w: seed type must be text or html, got %q", ErrInvalidStep, s.Type)
	}
}

// Build creates the message described by r.
func (r *Recipe) Build() (*message.Message, error) {
	m, err := r.Seed.NewMessage()
	if err != nil {
		return nil, err
	}
	if err := Apply(m, r.Steps); err != nil {
		return nil, err
	}
	return m, nil
}

// Apply runs steps on m in order and stops at the first failure. Steps
// before the failing one stay applied.
func Apply(m *message.Message, steps []Step) error {
	for i, s := range steps {
		op := s.Op()
		h, ok := handlers[op]
		if !ok {
			return fmt.Errorf("step %d: %w %q", i, ErrUnknownStep, op)
		}
		if err := h(m, s); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, op, err)
		}
	}
	return nil
}

type handler func(m *message.Message, s Step) error

var handlers map[string]handler

func init() {
	handlers = map[string]handler{
		"text":              applyText,
		"html":              applyHTML,
		"loading":           applyLoading,
		"button":            applyButton,
		"buttons":           applyButtons,
		"input":             applyInput,
		"push":              applyPush,
		"buttonRow":         applyButtonRow,
		"select":            applySelect,
		"option":            applyOption,
		"requestTransfer":   applyRequestTransfer,
		"requestLocation":   applyRequestLocation,
		"nextStateAccess":   applyNextStateAccess,
		"updateOnEvent":     applyUpdateOnEvent,
		"updateOnTag":       applyUpdateOnTag,
		"requestEncryption": applyRequestEncryption,
	}
}

// Ops lists the supported step names.
func Ops() []string {
	ops := make([]string, 0, len(handlers))
	for op := range handlers {
		ops = append(ops, op)
	}
	return ops
}

// Kind classifies err for API responses and metrics: the message validation
// kind when there is one, otherwise unknown_step or invalid_step.
func Kind(err error) string {
	if k := message.KindOf(err); k != "" {
		return k
	}
	switch {
	case errors.Is(err, ErrUnknownStep):
		return "unknown_step"
	case errors.Is(err, ErrInvalidStep):
		return "invalid_step"
	}
	return ""
}
