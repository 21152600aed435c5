// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate_Endpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
	}{
		{name: "x=0 returns y1", y0: 0, y1: 1, y2: 2, y3: 3, x: 0, want: 1},
		{name: "x=1 returns y2", y0: 0, y1: 1, y2: 2, y3: 3, x: 1, want: 2},
		{name: "linear data stays linear", y0: 1, y1: 2, y2: 3, y3: 4, x: 0.25, want: 2.25},
		{name: "flat data stays flat", y0: 0.5, y1: 0.5, y2: 0.5, y3: 0.5, x: 0.7, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(float64(got-tt.want)) > 1e-4 {
				t.Errorf("CubicInterpolate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2, 32767},
		{-3, -32767},
		{0.5, 16383},
	}

	for _, tt := range tests {
		if got := Float32ToInt16(tt.in); got != tt.want {
			t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	if got := Clamp(5.0, 0, 1); got != 1 {
		t.Errorf("Clamp(5, 0, 1) = %v, want 1", got)
	}
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Errorf("Clamp(-5, 0, 10) = %v, want 0", got)
	}
	if got := Clamp(0.25, 0, 1); got != 0.25 {
		t.Errorf("Clamp(0.25, 0, 1) = %v, want 0.25", got)
	}
}

func TestMinMax(t *testing.T) {
	t.Parallel()

	lo, hi := MinMax(5.0, 2.0)
	if lo != 2 || hi != 5 {
		t.Errorf("MinMax(5, 2) = %v, %v, want 2, 5", lo, hi)
	}
	ilo, ihi := MinMax(1, 3)
	if ilo != 1 || ihi != 3 {
		t.Errorf("MinMax(1, 3) = %v, %v, want 1, 3", ilo, ihi)
	}
}
