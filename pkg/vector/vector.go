// Package vector provides the numeric kernel the rest of imagevec rests
// on: L2 normalization and the three distance metrics used by the index
// strategies (cosine, Euclidean, Manhattan).
package vector

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// zeroNormEpsilon is the threshold below which a vector's L2 norm is
// treated as zero for normalization and cosine-distance purposes.
const zeroNormEpsilon = 1e-12

// defaultNormalizedTolerance is the default tolerance used by IsNormalized.
const defaultNormalizedTolerance = 1e-6

var (
	// ErrEmptyVector is returned when an operation receives a nil or
	// zero-length vector.
	ErrEmptyVector = errors.New("vector: empty vector")
	// ErrDimensionMismatch is returned when two vectors passed to a
	// binary operation have different lengths.
	ErrDimensionMismatch = errors.New("vector: dimension mismatch")
)

func checkNonEmpty(v []float64) error {
	if len(v) == 0 {
		return ErrEmptyVector
	}
	return nil
}

func checkPair(a, b []float64) error {
	if len(a) == 0 || len(b) == 0 {
		return ErrEmptyVector
	}
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	return nil
}

// L2Norm returns sqrt(sum(v[i]^2)).
func L2Norm(v []float64) (float64, error) {
	if err := checkNonEmpty(v); err != nil {
		return 0, err
	}
	return floats.Norm(v, 2), nil
}

// Normalize L2-normalizes v in place. If the norm is below zeroNormEpsilon
// the vector is left unchanged — this is intentional for all-zero
// descriptors, not an error.
func Normalize(v []float64) error {
	if err := checkNonEmpty(v); err != nil {
		return err
	}
	norm := floats.Norm(v, 2)
	if norm < zeroNormEpsilon {
		return nil
	}
	floats.Scale(1/norm, v)
	return nil
}

// NormalizedCopy returns a newly allocated, L2-normalized copy of v. The
// input is never mutated.
func NormalizedCopy(v []float64) ([]float64, error) {
	if err := checkNonEmpty(v); err != nil {
		return nil, err
	}
	out := make([]float64, len(v))
	copy(out, v)
	if err := Normalize(out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsNormalized reports whether ||v|| is within tol of 1. A tol <= 0 uses
// defaultNormalizedTolerance.
func IsNormalized(v []float64, tol float64) (bool, error) {
	norm, err := L2Norm(v)
	if err != nil {
		return false, err
	}
	if tol <= 0 {
		tol = defaultNormalizedTolerance
	}
	return math.Abs(norm-1) <= tol, nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// CosineDistance returns 1 - clamp(dot(a,b)/(||a||*||b||), -1, 1). A
// near-zero norm on either side (< zeroNormEpsilon) is treated as maximum
// dissimilarity (1.0) rather than as an error.
func CosineDistance(a, b []float64) (float64, error) {
	if err := checkPair(a, b); err != nil {
		return 0, err
	}
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA < zeroNormEpsilon || normB < zeroNormEpsilon {
		return 1.0, nil
	}
	cos := clamp(floats.Dot(a, b)/(normA*normB), -1, 1)
	return 1 - cos, nil
}

// EuclideanDistance returns sqrt(sum((a[i]-b[i])^2)).
func EuclideanDistance(a, b []float64) (float64, error) {
	if err := checkPair(a, b); err != nil {
		return 0, err
	}
	return floats.Distance(a, b, 2), nil
}

// ManhattanDistance returns sum(|a[i]-b[i]|).
func ManhattanDistance(a, b []float64) (float64, error) {
	if err := checkPair(a, b); err != nil {
		return 0, err
	}
	return floats.Distance(a, b, 1), nil
}

// Statistics captures descriptive statistics over a vector's coordinates.
type Statistics struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// ComputeStatistics returns mean, population standard deviation, min, and
// max over v's coordinates.
func ComputeStatistics(v []float64) (Statistics, error) {
	if err := checkNonEmpty(v); err != nil {
		return Statistics{}, err
	}
	mean := stat.Mean(v, nil)
	return Statistics{
		Mean:   mean,
		StdDev: math.Sqrt(stat.MomentAbout(2, v, mean, nil)),
		Min:    floats.Min(v),
		Max:    floats.Max(v),
	}, nil
}

// DotProduct returns sum(a[i]*b[i]).
func DotProduct(a, b []float64) (float64, error) {
	if err := checkPair(a, b); err != nil {
		return 0, err
	}
	return floats.Dot(a, b), nil
}
