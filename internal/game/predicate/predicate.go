// Package predicate evaluates roll-option predicates: conjunctions of
// statements (atoms, negations, disjunctions, numeric comparisons) tested
// against a roll option set.
package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/rollcontext/internal/game/rolloption"
)

// Statement is one term of a Predicate.
type Statement interface {
	Test(options *rolloption.Set) bool
}

// Predicate is satisfied when every statement holds. The empty predicate
// always holds.
type Predicate []Statement

// Test reports whether every statement of p holds for options.
func (p Predicate) Test(options *rolloption.Set) bool {
	for _, s := range p {
		if !s.Test(options) {
			return false
		}
	}
	return true
}

// Atom holds when the option is present.
type Atom string

// Test implements Statement.
func (a Atom) Test(options *rolloption.Set) bool { return options.Has(string(a)) }

// NotStatement holds when its operand does not.
type NotStatement struct{ Operand Statement }

// Test implements Statement.
func (n NotStatement) Test(options *rolloption.Set) bool { return !n.Operand.Test(options) }

// AndStatement holds when all operands hold.
type AndStatement []Statement

// Test implements Statement.
func (a AndStatement) Test(options *rolloption.Set) bool { return Predicate(a).Test(options) }

// OrStatement holds when at least one operand holds.
type OrStatement []Statement

// Test implements Statement.
func (o OrStatement) Test(options *rolloption.Set) bool {
	for _, s := range o {
		if s.Test(options) {
			return true
		}
	}
	return false
}

// NorStatement holds when no operand holds.
type NorStatement []Statement

// Test implements Statement.
func (n NorStatement) Test(options *rolloption.Set) bool { return !OrStatement(n).Test(options) }

// Operator is a numeric comparison operator.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

// Comparison holds when some option "<Option>:<n>" is present whose numeric
// suffix n compares to Value under Op.
type Comparison struct {
	Op     Operator
	Option string
	Value  float64
}

// Test implements Statement.
func (c Comparison) Test(options *rolloption.Set) bool {
	for _, o := range options.WithPrefix(c.Option + ":") {
		n, err := strconv.ParseFloat(strings.TrimPrefix(o, c.Option+":"), 64)
		if err != nil {
			continue
		}
		if c.compare(n) {
			return true
		}
	}
	return false
}

func (c Comparison) compare(n float64) bool {
	switch c.Op {
	case OpEq:
		return n == c.Value
	case OpGt:
		return n > c.Value
	case OpGte:
		return n >= c.Value
	case OpLt:
		return n < c.Value
	case OpLte:
		return n <= c.Value
	default:
		return false
	}
}

// Not negates s.
func Not(s Statement) Statement { return NotStatement{Operand: s} }

// Or builds a disjunction.
func Or(s ...Statement) Statement { return OrStatement(s) }

// Nor builds a negated disjunction.
func Nor(s ...Statement) Statement { return NorStatement(s) }

// And builds a conjunction.
func And(s ...Statement) Statement { return AndStatement(s) }

// Gte builds a numeric ">=" comparison on option.
func Gte(option string, value float64) Statement {
	return Comparison{Op: OpGte, Option: option, Value: value}
}

// Of builds a Predicate from bare atoms.
func Of(atoms ...string) Predicate {
	p := make(Predicate, 0, len(atoms))
	for _, a := range atoms {
		p = append(p, Atom(a))
	}
	return p
}

// UnmarshalYAML decodes a sequence of statements.
//
// Statement forms: a scalar atom, {not: stmt}, {and|or|nor: [stmt...]},
// {eq|gt|gte|lt|lte: [option, number]}.
func (p *Predicate) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("predicate: line %d: expected a sequence", node.Line)
	}
	out := make(Predicate, 0, len(node.Content))
	for _, child := range node.Content {
		s, err := decodeStatement(child)
		if err != nil {
			return err
		}
		out = append(out, s)
	}
	*p = out
	return nil
}

func decodeStatement(node *yaml.Node) (Statement, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return nil, fmt.Errorf("predicate: line %d: empty atom", node.Line)
		}
		return Atom(node.Value), nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return nil, fmt.Errorf("predicate: line %d: statement must have exactly one key", node.Line)
		}
		key, val := node.Content[0].Value, node.Content[1]
		switch key {
		case "not":
			s, err := decodeStatement(val)
			if err != nil {
				return nil, err
			}
			return Not(s), nil
		case "and", "or", "nor":
			ops, err := decodeOperands(val)
			if err != nil {
				return nil, err
			}
			switch key {
			case "and":
				return AndStatement(ops), nil
			case "or":
				return OrStatement(ops), nil
			default:
				return NorStatement(ops), nil
			}
		case string(OpEq), string(OpGt), string(OpGte), string(OpLt), string(OpLte):
			return decodeComparison(Operator(key), val)
		default:
			return nil, fmt.Errorf("predicate: line %d: unknown operator %q", node.Line, key)
		}
	default:
		return nil, fmt.Errorf("predicate: line %d: unsupported statement", node.Line)
	}
}

func decodeOperands(node *yaml.Node) ([]Statement, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("predicate: line %d: operands must be a sequence", node.Line)
	}
	ops := make([]Statement, 0, len(node.Content))
	for _, c := range node.Content {
		s, err := decodeStatement(c)
		if err != nil {
			return nil, err
		}
		ops = append(ops, s)
	}
	return ops, nil
}

func decodeComparison(op Operator, node *yaml.Node) (Statement, error) {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return nil, fmt.Errorf("predicate: line %d: %s expects [option, number]", node.Line, op)
	}
	n, err := strconv.ParseFloat(node.Content[1].Value, 64)
	if err != nil {
		return nil, fmt.Errorf("predicate: line %d: %s operand: %w", node.Line, op, err)
	}
	return Comparison{Op: op, Option: node.Content[0].Value, Value: n}, nil
}
