package postprocess

import (
	"github.com/chewxy/math32"
)

// Sigmoid is the logistic function 1 / (1 + e^-x).
//
// Evaluated so that the exponent is never positive, which keeps e^x from
// overflowing for large-magnitude inputs.
func Sigmoid(x float32) float32 {
	if x >= 0 {
		return 1 / (1 + math32.Exp(-x))
	}
	e := math32.Exp(x)
	return e / (1 + e)
}

// Softmax returns the normalized exponentials of xs.
//
// The maximum element is subtracted before exponentiating, so the largest
// term is exactly e^0 = 1 and the sum can never overflow. Returns nil for an
// empty input.
//
// Arguments:
//   - xs: Raw scores (logits).
//
// Returns:
//   - A new slice of len(xs) non-negative values that sum to 1.
func Softmax(xs []float32) []float32 {
	if len(xs) == 0 {
		return nil
	}
	out := make([]float32, len(xs))
	SoftmaxInto(out, xs)
	return out
}

// SoftmaxInto writes the softmax of xs into dst, which must be at least as
// long as xs. dst and xs may be the same slice.
func SoftmaxInto(dst, xs []float32) {
	if len(xs) == 0 {
		return
	}
	dst = dst[:len(xs)]

	maxVal := xs[0]
	for _, v := range xs[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	var sum float32
	for i, v := range xs {
		e := math32.Exp(v - maxVal)
		dst[i] = e
		sum += e
	}

	for i := range dst {
		dst[i] /= sum
	}
}

// Argmax returns the index and value of the largest element of xs.
// Ties go to the lowest index. Returns (-1, 0) for an empty slice.
func Argmax(xs []float32) (int, float32) {
	if len(xs) == 0 {
		return -1, 0
	}
	idx, best := 0, xs[0]
	for i := 1; i < len(xs); i++ {
		if xs[i] > best {
			idx, best = i, xs[i]
		}
	}
	return idx, best
}
