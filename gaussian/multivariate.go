package gaussian

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/gabrielPeart/AIToolbox/randn"
)

// Multivariate is a Gaussian distribution over vectors of a fixed
// dimension of at least 2, with the following characteristics:
//   - covariance held either as a diagonal vector of per-axis variances
//     or as a full symmetric positive definite matrix, chosen at
//     construction
//   - density quantities (inverse covariance, normalizing multiplier)
//     computed lazily on first use and cached until the covariance
//     changes; mean changes never invalidate the cache
//   - sampling through a transform rebuilt from the covariance on every
//     call: per-axis square roots in diagonal mode, the square-rooted
//     eigenstructure of the matrix otherwise
//   - thread-safe operations for concurrent access
//
// A new distribution has a zero mean and the identity covariance.
type Multivariate struct {
	dim  int
	mean []float64
	cov  covariance
	rng  *randn.Generator

	mu      sync.RWMutex
	derived *derived // nil until computed, dropped on covariance change
}

// NewMultivariate creates a Gaussian distribution over dim-dimensional
// vectors with a full covariance matrix, initially the identity.
// Dimensions below 2 are rejected with ErrDimension.
func NewMultivariate(dim int, opts ...Option) (*Multivariate, error) {
	if dim < 2 {
		return nil, fmt.Errorf("%w: dimension must be at least 2, got %d", ErrDimension, dim)
	}
	sym := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		sym.SetSym(i, i, 1)
	}
	return &Multivariate{
		dim:  dim,
		mean: make([]float64, dim),
		cov:  &fullCovariance{dim: dim, sym: sym},
		rng:  newGenerator(opts),
	}, nil
}

// NewMultivariateDiagonal creates a Gaussian distribution over
// dim-dimensional vectors whose covariance is restricted to a diagonal
// vector of per-axis variances, initially all 1. Dimensions below 2 are
// rejected with ErrDimension.
func NewMultivariateDiagonal(dim int, opts ...Option) (*Multivariate, error) {
	if dim < 2 {
		return nil, fmt.Errorf("%w: dimension must be at least 2, got %d", ErrDimension, dim)
	}
	variances := make([]float64, dim)
	for i := range variances {
		variances[i] = 1
	}
	return &Multivariate{
		dim:  dim,
		mean: make([]float64, dim),
		cov:  &diagonalCovariance{variances: variances},
		rng:  newGenerator(opts),
	}, nil
}

// Dim returns the dimension of the distribution.
func (m *Multivariate) Dim() int { return m.dim }

// Diagonal reports whether the covariance is restricted to a diagonal
// vector.
func (m *Multivariate) Diagonal() bool {
	_, ok := m.cov.(*diagonalCovariance)
	return ok
}

// Mean returns a copy of the mean vector.
func (m *Multivariate) Mean() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]float64, m.dim)
	copy(out, m.mean)
	return out
}

// Covariance returns a copy of the covariance parameters: dim per-axis
// variances for a diagonal distribution, dim*dim row-major entries for
// a full one.
func (m *Multivariate) Covariance() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cov.raw()
}

// CovarianceAt returns the covariance entry at (i, j) regardless of the
// underlying representation. It panics when an index lies outside the
// dimension.
func (m *Multivariate) CovarianceAt(i, j int) float64 {
	if i < 0 || i >= m.dim || j < 0 || j >= m.dim {
		panic("gaussian: covariance index out of range")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cov.at(i, j)
}

// SetMean replaces the mean vector. A length mismatch is rejected with
// ErrDimension. Derived quantities depend only on the covariance, so
// the cache stays valid.
func (m *Multivariate) SetMean(mean []float64) error {
	if len(mean) != m.dim {
		return fmt.Errorf("%w: got %d values, want %d", ErrDimension, len(mean), m.dim)
	}
	m.mu.Lock()
	copy(m.mean, mean)
	m.mu.Unlock()
	return nil
}

// SetCovarianceEntry writes one covariance entry and invalidates the
// derived cache. Negative values and indices outside the dimension are
// rejected with ErrBadVariance; off-diagonal writes on a diagonal
// distribution are rejected with ErrDiagonalOnly. In full mode the
// mirrored entry is written as well, keeping the matrix symmetric.
func (m *Multivariate) SetCovarianceEntry(i, j int, value float64) error {
	if i < 0 || i >= m.dim || j < 0 || j >= m.dim {
		return fmt.Errorf("%w: index (%d, %d) outside dimension %d", ErrBadVariance, i, j, m.dim)
	}
	if value < 0 {
		return fmt.Errorf("%w: %v at (%d, %d)", ErrBadVariance, value, i, j)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.cov.setEntry(i, j, value); err != nil {
		return err
	}
	m.derived = nil
	return nil
}

// SetCovariance replaces the whole covariance and invalidates the
// derived cache. A diagonal distribution takes dim per-axis variances;
// handing it dim*dim values is rejected with ErrDiagonalOnly and any
// other length with ErrDimension. A full distribution takes dim*dim
// row-major entries (ErrDimension otherwise), symmetrized by averaging
// mirrored values.
func (m *Multivariate) SetCovariance(values []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.cov.setAll(values); err != nil {
		return err
	}
	m.derived = nil
	return nil
}

// Prob returns the probability density at x. The quantities derived
// from the covariance are computed on first use after a covariance
// change; derivation failures (ErrNotPositiveDefinite, ErrZeroVariance)
// leave the cache invalid so a later call retries.
func (m *Multivariate) Prob(x []float64) (float64, error) {
	if len(x) != m.dim {
		return 0, fmt.Errorf("%w: got %d values, want %d", ErrDimension, len(x), m.dim)
	}
	der, err := m.state()
	if err != nil {
		return 0, err
	}
	return math.Exp(-0.5*der.quadForm(m.relTo(x))) * der.normalizer, nil
}

// LogProb returns the natural logarithm of the density at x. It stays
// finite deep in the tails where Prob underflows to zero.
func (m *Multivariate) LogProb(x []float64) (float64, error) {
	if len(x) != m.dim {
		return 0, fmt.Errorf("%w: got %d values, want %d", ErrDimension, len(x), m.dim)
	}
	der, err := m.state()
	if err != nil {
		return 0, err
	}
	return der.logNormalizer - 0.5*der.quadForm(m.relTo(x)), nil
}

// state returns the cached derived quantities, recomputing them under
// the write lock when a covariance change has dropped the cache.
func (m *Multivariate) state() (*derived, error) {
	m.mu.RLock()
	der := m.derived
	m.mu.RUnlock()
	if der != nil {
		return der, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.derived == nil {
		der, err := m.cov.derive()
		if err != nil {
			return nil, err
		}
		m.derived = der
	}
	return m.derived, nil
}

// relTo returns x - mean.
func (m *Multivariate) relTo(x []float64) []float64 {
	rel := make([]float64, m.dim)
	m.mu.RLock()
	floats.SubTo(rel, x, m.mean)
	m.mu.RUnlock()
	return rel
}

// Rand draws one vector from the distribution. The draw is written into
// dst when it has the distribution's dimension; a nil dst is allocated.
// Any other length is rejected with ErrDimension.
func (m *Multivariate) Rand(dst []float64) ([]float64, error) {
	if dst == nil {
		dst = make([]float64, m.dim)
	} else if len(dst) != m.dim {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrDimension, len(dst), m.dim)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	apply, err := m.cov.transform()
	if err != nil {
		return nil, err
	}
	z := make([]float64, m.dim)
	m.rng.Fill(z)
	apply(dst, z)
	floats.Add(dst, m.mean)
	return dst, nil
}

// Sample draws count independent vectors from the distribution. The
// sampling transform is rebuilt from the current covariance on every
// call and shared across the batch. Draws advance the generator, so
// sampling takes the write lock.
func (m *Multivariate) Sample(count int) ([][]float64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("gaussian: sample count must be positive, got %d", count)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	apply, err := m.cov.transform()
	if err != nil {
		return nil, err
	}
	out := make([][]float64, count)
	z := make([]float64, m.dim)
	for i := range out {
		m.rng.Fill(z)
		v := make([]float64, m.dim)
		apply(v, z)
		floats.Add(v, m.mean)
		out[i] = v
	}
	return out, nil
}

// covariance is the representation behind a Multivariate, fixed at
// construction. Implementations carry the mode-specific validation,
// derivation and sampling-transform logic; index and sign checks common
// to both modes live on the Multivariate methods.
type covariance interface {
	// setEntry writes one validated entry.
	setEntry(i, j int, value float64) error
	// setAll replaces the representation from a flat slice.
	setAll(values []float64) error
	// at reads the (i, j) entry.
	at(i, j int) float64
	// raw returns a copy of the backing values.
	raw() []float64
	// derive computes the quantities the density needs.
	derive() (*derived, error)
	// transform returns a function mapping a standard normal vector z
	// to a zero-mean draw with this covariance.
	transform() (func(dst, z []float64), error)
}

// derived bundles the density quantities computed from one covariance
// snapshot. A value is immutable once published and safe to share
// across concurrent readers; quadForm allocates its own temporaries.
type derived struct {
	quadForm      func(rel []float64) float64
	normalizer    float64
	logNormalizer float64
}

// diagonalCovariance restricts the covariance to per-axis variances.
type diagonalCovariance struct {
	variances []float64
}

func (c *diagonalCovariance) setEntry(i, j int, value float64) error {
	if i != j {
		return fmt.Errorf("%w: cannot set entry (%d, %d)", ErrDiagonalOnly, i, j)
	}
	c.variances[i] = value
	return nil
}

func (c *diagonalCovariance) setAll(values []float64) error {
	d := len(c.variances)
	switch len(values) {
	case d:
		copy(c.variances, values)
		return nil
	case d * d:
		return fmt.Errorf("%w: got a full %dx%d matrix", ErrDiagonalOnly, d, d)
	default:
		return fmt.Errorf("%w: got %d values, want %d", ErrDimension, len(values), d)
	}
}

func (c *diagonalCovariance) at(i, j int) float64 {
	if i != j {
		return 0
	}
	return c.variances[i]
}

func (c *diagonalCovariance) raw() []float64 {
	out := make([]float64, len(c.variances))
	copy(out, c.variances)
	return out
}

func (c *diagonalCovariance) derive() (*derived, error) {
	d := len(c.variances)
	sqrtDet := math.Sqrt(floats.Prod(c.variances))
	denom := math.Pow(2*math.Pi, float64(d)/2) * sqrtDet
	if denom == 0 {
		return nil, fmt.Errorf("%w: determinant term is zero", ErrZeroVariance)
	}
	inv := make([]float64, d)
	for k, v := range c.variances {
		inv[k] = 1 / v
	}
	return &derived{
		quadForm: func(rel []float64) float64 {
			var q float64
			for k, r := range rel {
				q += r * r * inv[k]
			}
			return q
		},
		normalizer:    1 / denom,
		logNormalizer: -math.Log(denom),
	}, nil
}

func (c *diagonalCovariance) transform() (func(dst, z []float64), error) {
	scale := make([]float64, len(c.variances))
	for k, v := range c.variances {
		scale[k] = math.Sqrt(v)
	}
	return func(dst, z []float64) {
		floats.MulTo(dst, scale, z)
	}, nil
}

// fullCovariance holds a full symmetric positive definite matrix.
type fullCovariance struct {
	dim int
	sym *mat.SymDense
}

func (c *fullCovariance) setEntry(i, j int, value float64) error {
	c.sym.SetSym(i, j, value)
	return nil
}

func (c *fullCovariance) setAll(values []float64) error {
	if len(values) != c.dim*c.dim {
		return fmt.Errorf("%w: got %d values, want %d", ErrDimension, len(values), c.dim*c.dim)
	}
	// Average mirrored entries so factorizations downstream see an
	// exactly symmetric matrix.
	for i := 0; i < c.dim; i++ {
		for j := i; j < c.dim; j++ {
			val := 0.5 * (values[i*c.dim+j] + values[j*c.dim+i])
			c.sym.SetSym(i, j, val)
		}
	}
	return nil
}

func (c *fullCovariance) at(i, j int) float64 {
	return c.sym.At(i, j)
}

func (c *fullCovariance) raw() []float64 {
	out := make([]float64, c.dim*c.dim)
	for i := 0; i < c.dim; i++ {
		for j := 0; j < c.dim; j++ {
			out[i*c.dim+j] = c.sym.At(i, j)
		}
	}
	return out
}

func (c *fullCovariance) derive() (*derived, error) {
	var chol mat.Cholesky
	if !chol.Factorize(c.sym) {
		return nil, fmt.Errorf("%w: Cholesky factorization failed", ErrNotPositiveDefinite)
	}
	// denom = (2π)^(d/2) · sqrt(det Σ), assembled in log space.
	logDenom := 0.5*float64(c.dim)*math.Log(2*math.Pi) + 0.5*chol.LogDet()
	denom := math.Exp(logDenom)
	if denom == 0 {
		return nil, fmt.Errorf("%w: determinant term is zero", ErrZeroVariance)
	}
	inv := mat.NewSymDense(c.dim, nil)
	if err := chol.InverseTo(inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPositiveDefinite, err)
	}
	d := c.dim
	return &derived{
		quadForm: func(rel []float64) float64 {
			v := mat.NewVecDense(d, rel)
			tmp := mat.NewVecDense(d, nil)
			tmp.MulVec(inv, v)
			return mat.Dot(v, tmp)
		},
		normalizer:    1 / denom,
		logNormalizer: -logDenom,
	}, nil
}

func (c *fullCovariance) transform() (func(dst, z []float64), error) {
	d := c.dim
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			if v := c.sym.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: entry (%d, %d) is %v", ErrSVDParameters, i, j, v)
			}
		}
	}
	var svd mat.SVD
	if !svd.Factorize(c.sym, mat.SVDFull) {
		return nil, ErrSVDConvergence
	}
	values := svd.Values(nil)
	var u mat.Dense
	svd.UTo(&u)
	// root = U·diag(sqrt(σᵢ)); the singular values of a symmetric
	// positive semi-definite matrix are its eigenvalues, so
	// root·rootᵀ = Σ.
	root := mat.NewDense(d, d, nil)
	for j := 0; j < d; j++ {
		s := math.Sqrt(values[j])
		for i := 0; i < d; i++ {
			root.Set(i, j, u.At(i, j)*s)
		}
	}
	return func(dst, z []float64) {
		out := mat.NewVecDense(d, dst)
		out.MulVec(root, mat.NewVecDense(d, z))
	}, nil
}
