package gaussian

import "errors"

// Sentinel errors for distribution construction, mutation and evaluation.
// Wrapped values carry call-site context; match with errors.Is.
var (
	// ErrDimension indicates a dimension below the multivariate minimum
	// or an argument whose length does not match the distribution.
	ErrDimension = errors.New("gaussian: dimension mismatch")

	// ErrBadVariance indicates a negative variance value or a covariance
	// index outside the distribution's dimension.
	ErrBadVariance = errors.New("gaussian: bad variance value")

	// ErrZeroVariance indicates a covariance whose determinant term is
	// exactly zero, leaving the density normalizer undefined.
	ErrZeroVariance = errors.New("gaussian: zero in variance")

	// ErrNotPositiveDefinite indicates that the covariance matrix could
	// not be factorized or inverted.
	ErrNotPositiveDefinite = errors.New("gaussian: covariance not positive definite")

	// ErrDiagonalOnly indicates an off-diagonal write or a full matrix
	// handed to a distribution restricted to diagonal covariance.
	ErrDiagonalOnly = errors.New("gaussian: diagonal covariance only")

	// ErrSVDParameters indicates non-finite covariance entries handed to
	// the singular value decomposition.
	ErrSVDParameters = errors.New("gaussian: invalid SVD parameters")

	// ErrSVDConvergence indicates that the singular value decomposition
	// failed to converge.
	ErrSVDConvergence = errors.New("gaussian: SVD did not converge")
)
