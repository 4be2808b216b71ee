package session

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/rollcontext/internal/game/rollcontext"
)

// Kind selects what a Request rolls.
type Kind string

const (
	KindCheck  Kind = "check"
	KindDamage Kind = "damage"
)

// Request describes one roll against the session's scene.
type Request struct {
	Kind Kind `yaml:"kind"`
	// Origin and Target are actor ids. Either may be empty, but not both.
	Origin string `yaml:"origin"`
	Target string `yaml:"target"`
	// Roller is the side supplying the statistic; empty means origin.
	Roller rollcontext.Role `yaml:"roller"`
	// Statistic is the slug of a named check on the rolling actor.
	Statistic string `yaml:"statistic"`
	// Strike is the id of the item the rolling actor strikes with.
	Strike string `yaml:"strike"`
	Thrown bool   `yaml:"thrown"`
	// Item is the id of an origin item used for a non-strike roll, such as
	// the spell forcing a save.
	Item    string   `yaml:"item"`
	Against string   `yaml:"against"`
	Domains []string `yaml:"domains"`
	Options []string `yaml:"options"`
	Traits  []string `yaml:"traits"`
	// ViewOnly previews the roll for a sheet: no target, nothing recorded.
	ViewOnly bool `yaml:"view_only"`
	// Die fixes the natural d20 result; 0 rolls it.
	Die int `yaml:"die"`
	// Outcome overrides the degree of success a damage roll follows.
	Outcome string `yaml:"outcome"`
}

// Validate checks the request's shape. Actor and statistic lookups happen
// when the request is executed.
func (r *Request) Validate() error {
	var errs []error
	if r.Kind != KindCheck && r.Kind != KindDamage {
		errs = append(errs, fmt.Errorf("kind must be check or damage, got %q", r.Kind))
	}
	if r.Origin == "" && r.Target == "" {
		errs = append(errs, errors.New("origin or target is required"))
	}
	if r.Roller != "" && r.Roller != rollcontext.RoleOrigin && r.Roller != rollcontext.RoleTarget {
		errs = append(errs, fmt.Errorf("roller must be origin or target, got %q", r.Roller))
	}
	if (r.Statistic == "") == (r.Strike == "") {
		errs = append(errs, errors.New("exactly one of statistic or strike is required"))
	}
	if r.Kind == KindDamage && (r.Strike == "" || r.roller() != rollcontext.RoleOrigin) {
		errs = append(errs, errors.New("damage rolls need a strike by the origin"))
	}
	if r.Die < 0 || r.Die > 20 {
		errs = append(errs, fmt.Errorf("die must be 1-20, got %d", r.Die))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid roll request: %w", errors.Join(errs...))
	}
	return nil
}

func (r *Request) roller() rollcontext.Role {
	if r.Roller == "" {
		return rollcontext.RoleOrigin
	}
	return r.Roller
}

// LoadRequests reads a YAML sequence of requests from path.
//
// Postcondition: every returned request is valid.
func LoadRequests(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading requests %s: %w", path, err)
	}
	var reqs []Request
	if err := yaml.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("parsing requests %s: %w", path, err)
	}
	for i := range reqs {
		if err := reqs[i].Validate(); err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
	}
	return reqs, nil
}
