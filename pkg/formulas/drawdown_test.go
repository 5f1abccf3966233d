package formulas

import (
	"math"
	"testing"
)

func TestCalculateDrawdown(t *testing.T) {
	tests := []struct {
		name         string
		returns      []float64
		wantMax      float64
		wantCurrent  float64
		wantDuration int
	}{
		{
			name:    "empty series yields zeros",
			returns: nil,
		},
		{
			name:         "single trough and partial recovery",
			returns:      []float64{0.1, -0.2, 0.1},
			wantMax:      20, // peak 1.1, trough 0.88
			wantCurrent:  12, // 0.968 vs peak 1.1
			wantDuration: 1,
		},
		{
			name:         "monotonic rise has no drawdown",
			returns:      []float64{0.01, 0.02, 0.03},
			wantMax:      0,
			wantCurrent:  0,
			wantDuration: 0,
		},
		{
			name:         "steady decline measures from first peak",
			returns:      []float64{-0.1, -0.1},
			wantMax:      19, // 1 -> 0.9 -> 0.81
			wantCurrent:  19,
			wantDuration: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDrawdown(tt.returns)

			if math.Abs(got.MaxDrawdown-tt.wantMax) > 1e-9 {
				t.Errorf("MaxDrawdown = %v, want %v", got.MaxDrawdown, tt.wantMax)
			}
			if math.Abs(got.CurrentDrawdown-tt.wantCurrent) > 1e-9 {
				t.Errorf("CurrentDrawdown = %v, want %v", got.CurrentDrawdown, tt.wantCurrent)
			}
			if got.Duration != tt.wantDuration {
				t.Errorf("Duration = %v, want %v", got.Duration, tt.wantDuration)
			}
		})
	}
}
