// Package board tracks token placement on the encounter map and answers the
// geometric questions a roll needs: distance between tokens and flanking.
package board

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// DefaultSquareSize is the width of one grid square in feet.
const DefaultSquareSize = 5

// ErrDuplicateToken is returned when placing a token whose id is already on the board.
var ErrDuplicateToken = errors.New("token already placed")

// Token is an actor's presence on the board. X and Y address the top-left
// occupied square; Width and Height are in squares. Elevation is in feet.
type Token struct {
	ID        string  `yaml:"id"`
	ActorID   string  `yaml:"actor"`
	X         int     `yaml:"x"`
	Y         int     `yaml:"y"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Elevation float64 `yaml:"elevation"`
	Hidden    bool    `yaml:"hidden"`
}

func (t *Token) size() (int, int) {
	w, h := t.Width, t.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// AllyResolver decides whether the actor candidateID flanks alongside
// flankerID, returning the candidate's reach in feet.
type AllyResolver interface {
	Ally(flankerID, candidateID string) (reach int, ok bool)
}

// Board holds placed tokens.
//
// All methods are safe for concurrent use.
type Board struct {
	squareSize float64
	gridless   bool
	allies     AllyResolver

	mu     sync.RWMutex
	order  []string
	tokens map[string]*Token
}

// New creates an empty board. A squareSize <= 0 selects DefaultSquareSize.
// allies may be nil, in which case no flanking is ever detected.
func New(squareSize float64, gridless bool, allies AllyResolver) *Board {
	if squareSize <= 0 {
		squareSize = DefaultSquareSize
	}
	return &Board{
		squareSize: squareSize,
		gridless:   gridless,
		allies:     allies,
		tokens:     make(map[string]*Token),
	}
}

// SquareSize returns the width of one square in feet.
func (b *Board) SquareSize() float64 { return b.squareSize }

// Gridless reports whether distances are measured without the grid.
func (b *Board) Gridless() bool { return b.gridless }

// Place adds t to the board.
//
// Precondition: t.ID must be non-empty and unique on the board.
func (b *Board) Place(t *Token) error {
	if t == nil || t.ID == "" {
		return errors.New("token id must not be empty")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tokens[t.ID]; ok {
		return fmt.Errorf("placing %q: %w", t.ID, ErrDuplicateToken)
	}
	b.tokens[t.ID] = t
	b.order = append(b.order, t.ID)
	return nil
}

// Token returns the token with id, or nil.
func (b *Board) Token(id string) *Token {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tokens[id]
}

// TokensFor returns the tokens of actorID in placement order.
func (b *Board) TokensFor(actorID string) []*Token {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []*Token
	for _, id := range b.order {
		if t := b.tokens[id]; t.ActorID == actorID {
			out = append(out, t)
		}
	}
	return out
}

// FirstToken returns the first placed token of actorID, or nil.
func (b *Board) FirstToken(actorID string) *Token {
	if ts := b.TokensFor(actorID); len(ts) > 0 {
		return ts[0]
	}
	return nil
}

// Distance returns the distance in feet between a and b.
//
// On the grid it counts squares between the closest occupied squares with
// alternating diagonals (every second diagonal costs double), elevation
// included. Gridless boards measure straight-line distance between token
// centres, which may be fractional.
func (b *Board) Distance(a, c *Token) float64 {
	if b.gridless {
		ax, ay := b.centre(a)
		cx, cy := b.centre(c)
		dz := a.Elevation - c.Elevation
		return math.Sqrt((ax-cx)*(ax-cx) + (ay-cy)*(ay-cy) + dz*dz)
	}
	aw, ah := a.size()
	cw, ch := c.size()
	dx := gap(a.X, aw, c.X, cw)
	dy := gap(a.Y, ah, c.Y, ch)
	dz := int(math.Round(math.Abs(a.Elevation-c.Elevation) / b.squareSize))
	squares := diagonal(diagonal(dx, dy), dz)
	return float64(squares) * b.squareSize
}

// gap returns the number of squares between the closest occupied squares of
// two spans on one axis; adjacent spans are one square apart.
func gap(a0, aw, b0, bw int) int {
	a1, b1 := a0+aw-1, b0+bw-1
	switch {
	case b0 > a1:
		return b0 - a1
	case a0 > b1:
		return a0 - b1
	default:
		return 0
	}
}

// diagonal counts squares for a move of (p, q) squares where every second
// diagonal step costs two.
func diagonal(p, q int) int {
	long, short := p, q
	if short > long {
		long, short = short, long
	}
	return long + short/2
}

func (b *Board) centre(t *Token) (float64, float64) {
	w, h := t.size()
	return (float64(t.X) + float64(w)/2) * b.squareSize, (float64(t.Y) + float64(h)/2) * b.squareSize
}

// IsFlanking reports whether flanker flanks flankee: flankee is within
// reach of flanker, and an ally of flanker, itself within its own reach of
// flankee, stands so that the line between the two flankers' centres passes
// through opposite sides or opposite corners of flankee's space.
func (b *Board) IsFlanking(flanker, flankee *Token, reach int) bool {
	if flanker == nil || flankee == nil || b.allies == nil {
		return false
	}
	if b.Distance(flanker, flankee) > float64(reach) {
		return false
	}
	b.mu.RLock()
	candidates := make([]*Token, 0, len(b.order))
	for _, id := range b.order {
		candidates = append(candidates, b.tokens[id])
	}
	b.mu.RUnlock()

	for _, ally := range candidates {
		if ally.ID == flanker.ID || ally.ID == flankee.ID {
			continue
		}
		allyReach, ok := b.allies.Ally(flanker.ActorID, ally.ActorID)
		if !ok || b.Distance(ally, flankee) > float64(allyReach) {
			continue
		}
		if b.oppositeSides(flanker, ally, flankee) {
			return true
		}
	}
	return false
}

type point struct{ x, y float64 }

func (b *Board) oppositeSides(p, q, between *Token) bool {
	px, py := b.centre(p)
	qx, qy := b.centre(q)
	w, h := between.size()
	x0, y0 := float64(between.X)*b.squareSize, float64(between.Y)*b.squareSize
	x1, y1 := x0+float64(w)*b.squareSize, y0+float64(h)*b.squareSize

	in, out, ok := clip(point{px, py}, point{qx, qy}, x0, y0, x1, y1)
	if !ok {
		return false
	}
	const eps = 1e-9
	on := func(v, edge float64) bool { return math.Abs(v-edge) < eps }
	left := func(pt point) bool { return on(pt.x, x0) }
	right := func(pt point) bool { return on(pt.x, x1) }
	top := func(pt point) bool { return on(pt.y, y0) }
	bottom := func(pt point) bool { return on(pt.y, y1) }
	return (left(in) && right(out)) || (right(in) && left(out)) ||
		(top(in) && bottom(out)) || (bottom(in) && top(out))
}

// clip clips segment p→q to the rectangle with Liang–Barsky and returns the
// entry and exit points.
func clip(p, q point, x0, y0, x1, y1 float64) (point, point, bool) {
	dx, dy := q.x-p.x, q.y-p.y
	t0, t1 := 0.0, 1.0
	ps := [4]float64{-dx, dx, -dy, dy}
	qs := [4]float64{p.x - x0, x1 - p.x, p.y - y0, y1 - p.y}
	for i := range ps {
		if ps[i] == 0 {
			if qs[i] < 0 {
				return point{}, point{}, false
			}
			continue
		}
		t := qs[i] / ps[i]
		if ps[i] < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return point{}, point{}, false
		}
	}
	return point{p.x + t0*dx, p.y + t0*dy}, point{p.x + t1*dx, p.y + t1*dy}, true
}
