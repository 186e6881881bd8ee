// Package gaussian implements univariate and multivariate Gaussian
// (normal) probability distributions with density evaluation and random
// sampling. Multivariate covariance comes in two flavors chosen at
// construction: a diagonal vector of per-axis variances or a full
// symmetric positive definite matrix. Quantities derived from the
// covariance are cached lazily and recomputed only after the covariance
// changes.
package gaussian

import (
	"fmt"
	"math"

	"github.com/gabrielPeart/AIToolbox/randn"
)

// Univariate is a one-dimensional Gaussian distribution with density
//
//	p(x) = exp(-(x-μ)² / 2σ²) / sqrt(2πσ²)
//
// The normalizing multiplier is recomputed eagerly on every variance
// change, so it is always consistent with the parameters. A zero
// variance is legal but degenerate: densities follow IEEE arithmetic to
// NaN while Rand returns the mean exactly. A Univariate is not safe for
// concurrent use.
type Univariate struct {
	mean       float64
	variance   float64
	normalizer float64

	rng *randn.Generator
}

// NewUnivariate creates a Gaussian distribution with the given mean and
// variance. A negative variance is rejected with ErrBadVariance.
func NewUnivariate(mean, variance float64, opts ...Option) (*Univariate, error) {
	if variance < 0 {
		return nil, fmt.Errorf("%w: %v", ErrBadVariance, variance)
	}
	u := &Univariate{
		mean: mean,
		rng:  newGenerator(opts),
	}
	u.updateVariance(variance)
	return u, nil
}

func (u *Univariate) updateVariance(variance float64) {
	u.variance = variance
	u.normalizer = 1 / math.Sqrt(2*math.Pi*variance)
}

// Mean returns the distribution's mean.
func (u *Univariate) Mean() float64 { return u.mean }

// Variance returns the distribution's variance.
func (u *Univariate) Variance() float64 { return u.variance }

// StdDev returns the distribution's standard deviation.
func (u *Univariate) StdDev() float64 { return math.Sqrt(u.variance) }

// SetMean replaces the mean. The normalizer does not depend on the
// mean, so nothing is recomputed.
func (u *Univariate) SetMean(mean float64) {
	u.mean = mean
}

// SetVariance replaces the variance and recomputes the normalizer.
// A negative variance is rejected with ErrBadVariance.
func (u *Univariate) SetVariance(variance float64) error {
	if variance < 0 {
		return fmt.Errorf("%w: %v", ErrBadVariance, variance)
	}
	u.updateVariance(variance)
	return nil
}

// Prob returns the probability density at x.
func (u *Univariate) Prob(x float64) float64 {
	rel := x - u.mean
	return math.Exp(-rel*rel/(2*u.variance)) * u.normalizer
}

// LogProb returns the natural logarithm of the density at x. It stays
// finite deep in the tails where Prob underflows to zero.
func (u *Univariate) LogProb(x float64) float64 {
	rel := x - u.mean
	return -0.5*math.Log(2*math.Pi*u.variance) - rel*rel/(2*u.variance)
}

// CDF returns the cumulative distribution function evaluated at x.
func (u *Univariate) CDF(x float64) float64 {
	return 0.5 * math.Erfc(-(x-u.mean)/math.Sqrt(2*u.variance))
}

// Rand draws one value from the distribution.
func (u *Univariate) Rand() float64 {
	return u.mean + u.rng.NormFloat64()*math.Sqrt(u.variance)
}

// Sample draws count independent values from the distribution.
func (u *Univariate) Sample(count int) ([]float64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("gaussian: sample count must be positive, got %d", count)
	}
	out := make([]float64, count)
	std := math.Sqrt(u.variance)
	for i := range out {
		out[i] = u.mean + u.rng.NormFloat64()*std
	}
	return out, nil
}
