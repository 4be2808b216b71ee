package actor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/item"
)

// ErrInvalidEffect is returned when a clone is asked to apply a record with no definition.
var ErrInvalidEffect = errors.New("effect record has no definition")

// ContextualClone returns a prepared copy of a carrying extraOptions and
// effects in addition to its own. The clone is marked contextual.
//
// Precondition: every record in effects has a non-nil Def.
// Postcondition: a is not modified.
func (a *Actor) ContextualClone(extraOptions []string, effects []effect.Record) (*Actor, error) {
	for i, rec := range effects {
		if rec.Def == nil {
			return nil, fmt.Errorf("cloning actor %q: effect %d: %w", a.ID, i, ErrInvalidEffect)
		}
	}
	c := a.copy()
	c.Options = append(c.Options, extraOptions...)
	c.Effects = append(c.Effects, effects...)
	c.contextual = true
	c.Prepare()
	return c, nil
}

func (a *Actor) copy() *Actor {
	c := &Actor{
		ID:       a.ID,
		Name:     a.Name,
		Type:     a.Type,
		Level:    a.Level,
		Size:     a.Size,
		Alliance: a.Alliance,
		Traits:   append([]string(nil), a.Traits...),
		Effects:  append([]effect.Record(nil), a.Effects...),
		Options:  append([]string(nil), a.Options...),
	}
	if a.Attributes != nil {
		c.Attributes = make(map[string]int, len(a.Attributes))
		for k, v := range a.Attributes {
			c.Attributes[k] = v
		}
	}
	if a.Marks != nil {
		c.Marks = make(map[string]string, len(a.Marks))
		for k, v := range a.Marks {
			c.Marks[k] = v
		}
	}
	c.Items = make([]*item.Item, 0, len(a.Items))
	for _, it := range a.Items {
		c.Items = append(c.Items, it.Clone())
	}
	return c
}

// ContextCloner produces contextual clones and logs each one.
type ContextCloner struct {
	logger *zap.Logger
}

// NewContextCloner creates a ContextCloner.
//
// Precondition: logger must not be nil.
func NewContextCloner(logger *zap.Logger) *ContextCloner {
	return &ContextCloner{logger: logger}
}

// ContextualClone clones a with options and effects applied.
func (c *ContextCloner) ContextualClone(ctx context.Context, a *Actor, options []string, effects []effect.Record) (*Actor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clone, err := a.ContextualClone(options, effects)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("contextual clone created",
		zap.String("actor", a.ID),
		zap.Int("options", len(options)),
		zap.Int("ephemeral_effects", len(effects)),
	)
	return clone, nil
}
