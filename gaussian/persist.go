package gaussian

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
)

// UnivariateState is the serializable snapshot of a Univariate.
type UnivariateState struct {
	Version  int
	Mean     float64
	Variance float64
}

// MultivariateState is the serializable snapshot of a Multivariate.
type MultivariateState struct {
	Version    int
	Dim        int
	Diagonal   bool
	Mean       []float64
	Covariance []float64
}

// Save serializes the distribution parameters to gob format. The random
// generator is not serialized; a loaded distribution gets a fresh one.
func (u *Univariate) Save(w io.Writer) error {
	state := UnivariateState{
		Version:  1, // Gob version
		Mean:     u.mean,
		Variance: u.variance,
	}
	return gob.NewEncoder(w).Encode(state)
}

// LoadUnivariate deserializes a Univariate saved with Save. Options
// configure the restored distribution's random generator.
func LoadUnivariate(r io.Reader, opts ...Option) (*Univariate, error) {
	var state UnivariateState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, err
	}
	if state.Version != 1 {
		return nil, errors.New("gaussian: unsupported gob version")
	}
	return NewUnivariate(state.Mean, state.Variance, opts...)
}

// Save serializes the distribution parameters to gob format. Derived
// quantities are not serialized as they are recomputed on demand, and
// the random generator is not serialized either.
func (m *Multivariate) Save(w io.Writer) error {
	m.mu.RLock()
	state := MultivariateState{
		Version:    1, // Gob version
		Dim:        m.dim,
		Diagonal:   m.Diagonal(),
		Mean:       make([]float64, m.dim),
		Covariance: m.cov.raw(),
	}
	copy(state.Mean, m.mean)
	m.mu.RUnlock()
	return gob.NewEncoder(w).Encode(state)
}

// LoadMultivariate deserializes a Multivariate saved with Save. Options
// configure the restored distribution's random generator. The loaded
// parameters pass through the regular constructor and setter
// validation.
func LoadMultivariate(r io.Reader, opts ...Option) (*Multivariate, error) {
	var state MultivariateState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, err
	}
	if state.Version != 1 {
		return nil, errors.New("gaussian: unsupported gob version")
	}

	var (
		m   *Multivariate
		err error
	)
	if state.Diagonal {
		m, err = NewMultivariateDiagonal(state.Dim, opts...)
	} else {
		m, err = NewMultivariate(state.Dim, opts...)
	}
	if err != nil {
		return nil, err
	}

	if err := m.SetMean(state.Mean); err != nil {
		return nil, fmt.Errorf("restoring mean: %w", err)
	}
	if err := m.SetCovariance(state.Covariance); err != nil {
		return nil, fmt.Errorf("restoring covariance: %w", err)
	}
	return m, nil
}
