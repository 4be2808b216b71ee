package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Source is the randomness provider for dice rolls.
type Source interface {
	// Intn returns a random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. It is safe for
// concurrent use.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn panics when n <= 0 or crypto/rand fails.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

type seededSource struct {
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source for replaying a session.
// It is not safe for concurrent use.
func NewSeededSource(seed uint64) Source {
	return seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return s.rng.IntN(n)
}

// Fixed is a Source that replays Faces in order, cycling. Each value is a
// die face (1..n); it is clamped into range for the die being rolled.
type Fixed struct {
	Faces []int
	next  int
}

// Intn returns the next face minus one.
func (f *Fixed) Intn(n int) int {
	if len(f.Faces) == 0 {
		return 0
	}
	v := f.Faces[f.next%len(f.Faces)]
	f.next++
	return min(max(v, 1), n) - 1
}
