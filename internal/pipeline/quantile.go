package pipeline

import (
	"fmt"
	"math"
	"slices"

	"github.com/psantana5/leadtime/pkg/models"
)

// Quantile returns the p-quantile of values using linear interpolation between
// order statistics (Hyndman-Fan type 7):
//
//	h = (n-1)*p
//	q = x[floor(h)] + (h - floor(h)) * (x[floor(h)+1] - x[floor(h)])
//
// values is not modified.
func Quantile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, &models.InsufficientDataError{Stage: "quantile", Rows: 0}
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("quantile %v out of range [0, 1]", p)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return quantileSorted(sorted, p), nil
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Quantiles returns several quantiles of the same sample with a single sort
func Quantiles(values []float64, ps ...float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, &models.InsufficientDataError{Stage: "quantile", Rows: 0}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	out := make([]float64, len(ps))
	for i, p := range ps {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("quantile %v out of range [0, 1]", p)
		}
		out[i] = quantileSorted(sorted, p)
	}
	return out, nil
}
