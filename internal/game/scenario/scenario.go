// Package scenario loads encounter snapshots from YAML: the actors taking
// part, their items and applied effects, and the tokens placing them on a
// board.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/rollcontext/internal/game/actor"
	"github.com/cory-johannsen/rollcontext/internal/game/board"
	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
)

// yamlScenario is the top-level YAML structure of a scenario file.
type yamlScenario struct {
	Name   string        `yaml:"name"`
	Board  *yamlBoard    `yaml:"board"`
	Actors []yamlActor   `yaml:"actors"`
	Tokens []board.Token `yaml:"tokens"`
}

type yamlBoard struct {
	SquareSize float64 `yaml:"square_size"`
	Gridless   bool    `yaml:"gridless"`
}

type yamlActor struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Level      int               `yaml:"level"`
	Size       actor.Size        `yaml:"size"`
	Alliance   string            `yaml:"alliance"`
	Traits     []string          `yaml:"traits"`
	Attributes map[string]int    `yaml:"attributes"`
	Items      []*item.Item      `yaml:"items"`
	Effects    []string          `yaml:"effects"` // effect registry ids
	Options    []string          `yaml:"options"`
	Marks      map[string]string `yaml:"marks"` // token id -> mark slug
}

// BoardSettings configures the board a scenario is placed on.
type BoardSettings struct {
	SquareSize float64
	Gridless   bool
}

// Scenario is a parsed, validated encounter snapshot. Effect ids are not
// resolved until Build.
type Scenario struct {
	Name string
	// Board overrides the caller's board settings when non-nil.
	Board  *BoardSettings
	actors []yamlActor
	tokens []board.Token
}

// Scene is a built scenario: prepared actors indexed by id and a board
// holding their tokens.
type Scene struct {
	Name   string
	Roster actor.Roster
	Board  *board.Board
}

var validTypes = map[string]bool{
	actor.TypeCharacter: true,
	actor.TypeNPC:       true,
	actor.TypeHazard:    true,
}

var validSizes = map[actor.Size]bool{
	"":                   true,
	actor.SizeTiny:       true,
	actor.SizeSmall:      true,
	actor.SizeMedium:     true,
	actor.SizeLarge:      true,
	actor.SizeHuge:       true,
	actor.SizeGargantuan: true,
}

// LoadFromFile reads and validates a scenario YAML file.
//
// Precondition: path must point to a readable YAML scenario file.
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadFromFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a scenario from YAML bytes.
//
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadFromBytes(data []byte) (*Scenario, error) {
	var ys yamlScenario
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := ys.validate(); err != nil {
		return nil, err
	}
	s := &Scenario{Name: ys.Name, actors: ys.Actors, tokens: ys.Tokens}
	if ys.Board != nil {
		s.Board = &BoardSettings{SquareSize: ys.Board.SquareSize, Gridless: ys.Board.Gridless}
	}
	return s, nil
}

func (ys *yamlScenario) validate() error {
	if len(ys.Actors) == 0 {
		return fmt.Errorf("scenario %q: at least one actor is required", ys.Name)
	}
	if ys.Board != nil && ys.Board.SquareSize < 0 {
		return fmt.Errorf("scenario %q: board square_size must not be negative", ys.Name)
	}
	actors := make(map[string]bool, len(ys.Actors))
	for _, a := range ys.Actors {
		if a.ID == "" {
			return fmt.Errorf("scenario %q: actor id must not be empty", ys.Name)
		}
		if actors[a.ID] {
			return fmt.Errorf("scenario %q: duplicate actor %q", ys.Name, a.ID)
		}
		actors[a.ID] = true
		if !validTypes[a.Type] {
			return fmt.Errorf("scenario %q: actor %q has unknown type %q", ys.Name, a.ID, a.Type)
		}
		if !validSizes[a.Size] {
			return fmt.Errorf("scenario %q: actor %q has unknown size %q", ys.Name, a.ID, a.Size)
		}
		items := make(map[string]bool, len(a.Items))
		for _, it := range a.Items {
			if it == nil || it.ID == "" {
				return fmt.Errorf("scenario %q: actor %q has an item without an id", ys.Name, a.ID)
			}
			if items[it.ID] {
				return fmt.Errorf("scenario %q: actor %q has duplicate item %q", ys.Name, a.ID, it.ID)
			}
			items[it.ID] = true
			for _, r := range it.Rules {
				if err := r.Validate(); err != nil {
					return fmt.Errorf("scenario %q: item %q of actor %q: %w", ys.Name, it.ID, a.ID, err)
				}
			}
		}
	}
	for _, t := range ys.Tokens {
		if t.ID == "" {
			return fmt.Errorf("scenario %q: token id must not be empty", ys.Name)
		}
		if !actors[t.ActorID] {
			return fmt.Errorf("scenario %q: token %q references unknown actor %q", ys.Name, t.ID, t.ActorID)
		}
	}
	return nil
}

// Build resolves every actor's effect ids against reg, prepares the actors,
// and places the tokens on a new board. The scenario's own board section
// takes precedence over defaults.
//
// Precondition: reg must not be nil.
// Postcondition: every actor in the returned Scene has been prepared; each
// call returns fresh actors and a fresh board.
func (s *Scenario) Build(reg *effect.Registry, defaults BoardSettings) (*Scene, error) {
	actors := make([]*actor.Actor, 0, len(s.actors))
	for _, ya := range s.actors {
		a, err := buildActor(ya, reg)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		actors = append(actors, a)
	}
	roster := actor.NewRoster(actors...)

	settings := defaults
	if s.Board != nil {
		settings = *s.Board
	}
	b := board.New(settings.SquareSize, settings.Gridless, roster)
	for _, t := range s.tokens {
		tok := t
		if err := b.Place(&tok); err != nil {
			return nil, fmt.Errorf("scenario %q: placing token %q: %w", s.Name, t.ID, err)
		}
	}
	return &Scene{Name: s.Name, Roster: roster, Board: b}, nil
}

func buildActor(ya yamlActor, reg *effect.Registry) (*actor.Actor, error) {
	a := &actor.Actor{
		ID:         ya.ID,
		Name:       ya.Name,
		Type:       ya.Type,
		Level:      ya.Level,
		Size:       ya.Size,
		Alliance:   ya.Alliance,
		Traits:     append([]string(nil), ya.Traits...),
		Attributes: make(map[string]int, len(ya.Attributes)),
		Options:    append([]string(nil), ya.Options...),
		Marks:      make(map[string]string, len(ya.Marks)),
	}
	if a.Name == "" {
		a.Name = a.ID
	}
	if a.Size == "" {
		a.Size = actor.SizeMedium
	}
	for k, v := range ya.Attributes {
		a.Attributes[k] = v
	}
	for k, v := range ya.Marks {
		a.Marks[k] = v
	}
	for _, it := range ya.Items {
		a.Items = append(a.Items, it.Clone())
	}
	for _, id := range ya.Effects {
		rec, ok := reg.Instantiate(id, a.ID)
		if !ok {
			return nil, fmt.Errorf("actor %q: unknown effect %q", a.ID, id)
		}
		a.Effects = append(a.Effects, rec)
	}
	a.Prepare()
	return a, nil
}
