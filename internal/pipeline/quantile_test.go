package pipeline

import (
	"errors"
	"testing"

	"github.com/psantana5/leadtime/pkg/models"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"Single value", []float64{2.5}, 0.95, 2.5},
		{"Median of odd sample", []float64{3, 1, 2}, 0.5, 2},
		{"Median of even sample interpolates", []float64{4, 1, 3, 2}, 0.5, 2.5},
		{"P95 of five", []float64{5, 4, 3, 2, 1}, 0.95, 4.8},
		{"P95 of twenty", seq(1, 20), 0.95, 19.05},
		{"Minimum", []float64{7, 3, 9}, 0, 3},
		{"Maximum", []float64{7, 3, 9}, 1, 9},
		{"Ties", []float64{2, 2, 2, 2}, 0.95, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quantile(tt.values, tt.p)
			if err != nil {
				t.Fatalf("Quantile() error = %v", err)
			}
			if !approxEqual(got, tt.want) {
				t.Errorf("Quantile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuantileDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	if _, err := Quantile(values, 0.5); err != nil {
		t.Fatalf("Quantile() error = %v", err)
	}
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("Input was reordered: %v", values)
	}
}

func TestQuantileErrors(t *testing.T) {
	_, err := Quantile(nil, 0.95)
	var insufficient *models.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Errorf("Expected InsufficientDataError for empty input, got %v", err)
	}

	if _, err := Quantile([]float64{1}, 1.2); err == nil {
		t.Error("Expected error for p > 1")
	}
}

func TestQuantiles(t *testing.T) {
	got, err := Quantiles([]float64{1, 2, 3, 4, 5}, 0.25, 0.5, 0.75)
	if err != nil {
		t.Fatalf("Quantiles() error = %v", err)
	}
	want := []float64{2, 3, 4}
	for i := range want {
		if !approxEqual(got[i], want[i]) {
			t.Errorf("Quantiles()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func seq(from, to int) []float64 {
	out := make([]float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, float64(i))
	}
	return out
}
