// Package effect defines conditions and effects: static definitions loaded
// from YAML, the rule elements they carry, and the records that apply them
// to an actor, including roll-scoped ephemeral records.
package effect

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Def types.
const (
	TypeCondition = "condition"
	TypeEffect    = "effect"
)

// Def is the static definition of a condition or effect, loaded from YAML.
type Def struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Type        string        `yaml:"type"` // "condition" | "effect"
	Description string        `yaml:"description"`
	Rules       []RuleElement `yaml:"rules"`
}

// Validate checks the definition and each of its rules.
//
// Postcondition: returns nil iff the Def and all its rules are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.Type != TypeCondition && d.Type != TypeEffect {
		errs = append(errs, fmt.Errorf("type must be condition or effect, got %q", d.Type))
	}
	for _, r := range d.Rules {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("effect %q validation failed: %v", d.ID, errs)
	}
	return nil
}

// Record is one application of a Def to an actor.
type Record struct {
	// ID is derived from Source, Def.ID, and Name, so identical applications
	// produce identical records.
	ID string
	// Def is the applied definition. Never nil in a valid record.
	Def *Def
	// Name overrides Def.Name for display, e.g. "Flanked" for off-guard.
	Name string
	// Source names what applied the record (an actor id, or "flanking").
	Source string
	// Ephemeral records exist for one roll only and are never persisted.
	Ephemeral bool
}

var recordNamespace = uuid.MustParse("6f1c1a52-2f9e-4a0e-9a57-3c1e6c0b7d21")

func newRecord(def *Def, name, source string, ephemeral bool) Record {
	key := strings.Join([]string{source, def.ID, name}, "/")
	return Record{
		ID:        uuid.NewSHA1(recordNamespace, []byte(key)).String(),
		Def:       def,
		Name:      name,
		Source:    source,
		Ephemeral: ephemeral,
	}
}

// Label returns the record's display name.
func (r Record) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Def.Name
}

// Registry holds all known Defs keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// DefaultRegistry returns a Registry holding the built-in conditions the
// roll context engine synthesises on its own.
//
// Postcondition: Get("off-guard") succeeds.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(&Def{
		ID:          "off-guard",
		Name:        "Off-Guard",
		Type:        TypeCondition,
		Description: "You take a -2 circumstance penalty to AC.",
		Rules: []RuleElement{{
			Key:       KeyFlatModifier,
			Slug:      "off-guard",
			Label:     "Off-Guard",
			Selectors: []string{"armor-class"},
			Type:      "circumstance",
			Value:     -2,
		}},
	})
	return reg
}

// Register adds def, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns the registered Defs sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Instantiate builds a persistent record of id applied by source.
func (r *Registry) Instantiate(id, source string) (Record, bool) {
	d, ok := r.defs[id]
	if !ok {
		return Record{}, false
	}
	return newRecord(d, "", source, false), true
}

// Ephemeral builds a roll-scoped record of id applied by source.
func (r *Registry) Ephemeral(id, source string) (Record, bool) {
	d, ok := r.defs[id]
	if !ok {
		return Record{}, false
	}
	return newRecord(d, "", source, true), true
}

// Condition builds a roll-scoped record of the condition id displayed as name.
//
// Postcondition: on success the record is Ephemeral and its Def is a condition.
func (r *Registry) Condition(id, name string) (Record, bool) {
	d, ok := r.defs[id]
	if !ok || d.Type != TypeCondition {
		return Record{}, false
	}
	return newRecord(d, name, "condition", true), true
}

// LoadDirectory reads every *.yaml file in dir into a Registry seeded with
// the built-in definitions. Files may override built-ins by ID.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := DefaultRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
