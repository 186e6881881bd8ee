// Package randn provides seedable generators of normally distributed
// pseudo-random numbers based on the Marsaglia polar method.
package randn

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mathext/prng"
)

// Source is the uniform bit stream consumed by a Generator. It is
// satisfied by *prng.MT19937, math/rand *Rand and the *Rand of
// golang.org/x/exp/rand.
type Source interface {
	// Uint64 returns a random number in [0, MaxUint64] and advances the
	// generator's state.
	Uint64() uint64
}

// Generator produces standard normal variates from a uniform Source.
// The polar method yields variates in pairs; the spare from each round
// is cached on the instance and returned by the next call. A Generator
// is not safe for concurrent use: every consumer owns its own instance.
type Generator struct {
	src Source

	// spare variate from the last polar round
	extra    float64
	hasExtra bool
}

// New returns a Generator backed by a Mersenne Twister seeded with seed.
// A zero seed is replaced with the current wall-clock time.
func New(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := prng.NewMT19937()
	src.Seed(seed)
	return &Generator{src: src}
}

// NewFrom returns a Generator drawing uniforms from src. A nil src
// behaves like New(0).
func NewFrom(src Source) *Generator {
	if src == nil {
		return New(0)
	}
	return &Generator{src: src}
}

// Float64 returns a uniform variate in [0, 1).
func (g *Generator) Float64() float64 {
	return float64(g.src.Uint64()>>11) / (1 << 53)
}

// NormFloat64 returns a standard normal variate with mean 0 and
// variance 1.
func (g *Generator) NormFloat64() float64 {
	if g.hasExtra {
		g.hasExtra = false
		return g.extra
	}
	var x1, x2, w float64
	for {
		x1 = 2*g.Float64() - 1
		x2 = 2*g.Float64() - 1
		w = x1*x1 + x2*x2
		// The candidate must fall strictly inside the unit circle, and
		// the origin itself is rejected: log(0) is not finite.
		if w < 1 && w != 0 {
			break
		}
	}
	scale := math.Sqrt(-2 * math.Log(w) / w)
	g.extra = x2 * scale
	g.hasExtra = true
	return x1 * scale
}

// Fill overwrites dst with independent standard normal variates.
func (g *Generator) Fill(dst []float64) {
	for i := range dst {
		dst[i] = g.NormFloat64()
	}
}
