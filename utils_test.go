package joysticks

import (
	"math"
	"testing"
)

func TestNormalizeAxis(t *testing.T) {
	tests := []struct {
		name            string
		value, min, max int32
		want            float32
	}{
		{"minimum maps to -1", -32768, -32768, 32767, -1},
		{"maximum maps to +1", 32767, -32768, 32767, 1},
		{"unsigned range minimum", 0, 0, 255, -1},
		{"unsigned range maximum", 255, 0, 255, 1},
		{"unsigned range midpoint", 128, 0, 255, 2*128.0/255.0 - 1},
		{"degenerate range", 42, 7, 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeAxis(tt.value, tt.min, tt.max)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Fatalf("normalizeAxis(%d, %d, %d) = %v, want %v",
					tt.value, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestNormalizeAxisStaysInRange(t *testing.T) {
	for v := int32(-32768); v <= 32767; v += 997 {
		got := normalizeAxis(v, -32768, 32767)
		if got < -1 || got > 1 {
			t.Fatalf("normalizeAxis(%d) = %v escapes [-1, 1]", v, got)
		}
	}
}

func TestHatDirection(t *testing.T) {
	tests := []struct {
		value int32
		want  int8
	}{
		{-1, -1},
		{-32768, -1},
		{0, 0},
		{1, 1},
		{32767, 1},
	}

	for _, tt := range tests {
		if got := hatDirection(tt.value); got != tt.want {
			t.Errorf("hatDirection(%d) = %d, want %d", tt.value, got, tt.want)
		}
	}
}
