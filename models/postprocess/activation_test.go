package postprocess

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigmoid(t *testing.T) {
	assert.Equal(t, float32(0.5), Sigmoid(0))

	for _, x := range []float32{-10, -5, -1, -0.001, 0.001, 1, 5, 10} {
		y := Sigmoid(x)
		assert.Greater(t, y, float32(0), "sigmoid(%v)", x)
		assert.Less(t, y, float32(1), "sigmoid(%v)", x)
	}

	// Symmetry: sigmoid(-x) = 1 - sigmoid(x).
	for _, x := range []float32{0.5, 2, 4} {
		assert.InDelta(t, 1-Sigmoid(x), Sigmoid(-x), 1e-6)
	}

	// Extreme inputs stay finite and bounded.
	for _, x := range []float32{-1000, -100, 100, 1000, math32.MaxFloat32, -math32.MaxFloat32} {
		y := Sigmoid(x)
		assert.False(t, math32.IsNaN(y), "sigmoid(%v)", x)
		assert.GreaterOrEqual(t, y, float32(0), "sigmoid(%v)", x)
		assert.LessOrEqual(t, y, float32(1), "sigmoid(%v)", x)
	}
	assert.Greater(t, Sigmoid(1000), Sigmoid(-1000))
}

func TestSoftmax(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
	}{
		{"single", []float32{3}},
		{"uniform", []float32{1, 1, 1, 1}},
		{"mixed", []float32{-2, 0, 1.5, 3}},
		{"large magnitudes", []float32{1000, 999, -1000}},
		{"all negative", []float32{-500, -501, -502}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Softmax(tt.in)
			require.Len(t, out, len(tt.in))

			var sum float32
			for _, v := range out {
				assert.GreaterOrEqual(t, v, float32(0))
				assert.False(t, v != v, "NaN in output")
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-5)
		})
	}
}

func TestSoftmax_ShiftInvariant(t *testing.T) {
	xs := []float32{0.3, -1.2, 2.5, 0}
	base := Softmax(xs)

	for _, c := range []float32{-50, -1, 7, 80} {
		shifted := make([]float32, len(xs))
		for i, v := range xs {
			shifted[i] = v + c
		}
		out := Softmax(shifted)
		for i := range base {
			assert.InDelta(t, base[i], out[i], 1e-5, "shift %v index %d", c, i)
		}
	}
}

func TestSoftmax_Monotone(t *testing.T) {
	xs := []float32{0.1, 2, -3, 2, 0.7}
	out := Softmax(xs)

	for i := range xs {
		for j := range xs {
			if xs[i] > xs[j] {
				assert.Greater(t, out[i], out[j])
			}
			if xs[i] == xs[j] {
				assert.Equal(t, out[i], out[j])
			}
		}
	}
}

func TestSoftmax_Empty(t *testing.T) {
	assert.Nil(t, Softmax(nil))
	assert.Nil(t, Softmax([]float32{}))
}

func TestSoftmaxInto_InPlace(t *testing.T) {
	xs := []float32{1, 2, 3}
	want := Softmax(xs)

	SoftmaxInto(xs, xs)
	assert.InDeltaSlice(t, want, xs, 1e-7)
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		name    string
		in      []float32
		wantIdx int
		wantVal float32
	}{
		{"single", []float32{0.4}, 0, 0.4},
		{"max last", []float32{0.1, 0.2, 0.7}, 2, 0.7},
		{"max first", []float32{0.9, 0.05, 0.05}, 0, 0.9},
		{"tie picks first", []float32{0.2, 0.4, 0.4}, 1, 0.4},
		{"all equal", []float32{0.25, 0.25, 0.25, 0.25}, 0, 0.25},
		{"negatives", []float32{-3, -1, -2}, 1, -1},
		{"empty", nil, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, val := Argmax(tt.in)
			assert.Equal(t, tt.wantIdx, idx)
			assert.Equal(t, tt.wantVal, val)
		})
	}
}
