package postprocess

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x, y, w, h float32) images.Rect {
	return images.Rect{X: x, Y: y, Width: w, Height: h}
}

func TestApplyGreedyNMS_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Prediction
		config     NMSConfig
		want       []Prediction
	}{
		{
			name: "identical boxes keep the higher score",
			candidates: []Prediction{
				{ClassIndex: 1, Score: 0.8, Rect: box(0, 0, 10, 10)},
				{ClassIndex: 2, Score: 0.9, Rect: box(0, 0, 10, 10)},
			},
			config: NMSConfig{IoUThreshold: 0.5, Limit: 10},
			want: []Prediction{
				{ClassIndex: 2, Score: 0.9, Rect: box(0, 0, 10, 10)},
			},
		},
		{
			name: "disjoint boxes are both kept in score order",
			candidates: []Prediction{
				{ClassIndex: 0, Score: 0.8, Rect: box(100, 100, 10, 10)},
				{ClassIndex: 0, Score: 0.9, Rect: box(0, 0, 10, 10)},
			},
			config: NMSConfig{IoUThreshold: 0.5, Limit: 10},
			want: []Prediction{
				{ClassIndex: 0, Score: 0.9, Rect: box(0, 0, 10, 10)},
				{ClassIndex: 0, Score: 0.8, Rect: box(100, 100, 10, 10)},
			},
		},
		{
			name: "limit stops before the lowest score",
			candidates: []Prediction{
				{ClassIndex: 0, Score: 0.2, Rect: box(200, 200, 10, 10)},
				{ClassIndex: 0, Score: 0.95, Rect: box(0, 0, 10, 10)},
				{ClassIndex: 0, Score: 0.9, Rect: box(100, 100, 10, 10)},
			},
			config: NMSConfig{IoUThreshold: 0.5, Limit: 2},
			want: []Prediction{
				{ClassIndex: 0, Score: 0.95, Rect: box(0, 0, 10, 10)},
				{ClassIndex: 0, Score: 0.9, Rect: box(100, 100, 10, 10)},
			},
		},
		{
			name: "suppressed box never suppresses others",
			// B overlaps A and C; C does not overlap A. Once B is removed by
			// A, C survives even though B would have removed it.
			candidates: []Prediction{
				{Score: 0.9, Rect: box(0, 0, 10, 10)},
				{Score: 0.8, Rect: box(2, 0, 10, 10)},
				{Score: 0.7, Rect: box(8, 0, 10, 10)},
			},
			config: NMSConfig{IoUThreshold: 0.5, Limit: 10},
			want: []Prediction{
				{Score: 0.9, Rect: box(0, 0, 10, 10)},
				{Score: 0.7, Rect: box(8, 0, 10, 10)},
			},
		},
		{
			name: "overlap exactly at the threshold is kept",
			// IoU = 50 / 150 = 1/3.
			candidates: []Prediction{
				{Score: 0.9, Rect: box(0, 0, 10, 10)},
				{Score: 0.8, Rect: box(5, 0, 10, 10)},
			},
			config: NMSConfig{IoUThreshold: 1.0 / 3.0, Limit: 10},
			want: []Prediction{
				{Score: 0.9, Rect: box(0, 0, 10, 10)},
				{Score: 0.8, Rect: box(5, 0, 10, 10)},
			},
		},
		{
			name: "degenerate boxes are never suppressed",
			candidates: []Prediction{
				{Score: 0.9, Rect: box(0, 0, 0, 0)},
				{Score: 0.8, Rect: box(0, 0, 0, 0)},
			},
			config: NMSConfig{IoUThreshold: 0.5, Limit: 10},
			want: []Prediction{
				{Score: 0.9, Rect: box(0, 0, 0, 0)},
				{Score: 0.8, Rect: box(0, 0, 0, 0)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyGreedyNMS(tt.candidates, tt.config)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyGreedyNMS_EmptyAndZeroLimit(t *testing.T) {
	config := NMSConfig{IoUThreshold: 0.5, Limit: 10}
	assert.Nil(t, ApplyGreedyNMS(nil, config))
	assert.Nil(t, ApplyGreedyNMS([]Prediction{}, config))

	one := []Prediction{{Score: 0.5, Rect: box(0, 0, 1, 1)}}
	assert.Nil(t, ApplyGreedyNMS(one, NMSConfig{IoUThreshold: 0.5, Limit: 0}))
}

func TestApplyGreedyNMS_TiesKeepInputOrder(t *testing.T) {
	candidates := []Prediction{
		{ClassIndex: 3, Score: 0.5, Rect: box(0, 0, 10, 10)},
		{ClassIndex: 1, Score: 0.7, Rect: box(100, 0, 10, 10)},
		{ClassIndex: 4, Score: 0.5, Rect: box(200, 0, 10, 10)},
		{ClassIndex: 2, Score: 0.7, Rect: box(300, 0, 10, 10)},
	}

	got := ApplyGreedyNMS(candidates, NMSConfig{IoUThreshold: 0.5, Limit: 10})
	require.Len(t, got, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, classIndices(got))

	// With identical boxes the earlier of two equal scores wins.
	same := []Prediction{
		{ClassIndex: 7, Score: 0.6, Rect: box(0, 0, 10, 10)},
		{ClassIndex: 8, Score: 0.6, Rect: box(0, 0, 10, 10)},
	}
	got = ApplyGreedyNMS(same, NMSConfig{IoUThreshold: 0.5, Limit: 10})
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].ClassIndex)
}

func TestApplyGreedyNMS_ClassAware(t *testing.T) {
	candidates := []Prediction{
		{ClassIndex: 0, Score: 0.9, Rect: box(0, 0, 10, 10)},
		{ClassIndex: 1, Score: 0.8, Rect: box(0, 0, 10, 10)},
		{ClassIndex: 0, Score: 0.7, Rect: box(1, 1, 10, 10)},
	}

	agnostic := ApplyGreedyNMS(candidates, NMSConfig{IoUThreshold: 0.5, Limit: 10})
	assert.Equal(t, []int{0}, classIndices(agnostic))

	aware := ApplyGreedyNMS(candidates, NMSConfig{IoUThreshold: 0.5, Limit: 10, ClassAware: true})
	assert.Equal(t, []int{0, 1}, classIndices(aware))
}

func TestApplyGreedyNMS_DoesNotMutateInput(t *testing.T) {
	candidates := []Prediction{
		{Score: 0.1, Rect: box(0, 0, 10, 10)},
		{Score: 0.9, Rect: box(0, 0, 10, 10)},
	}
	before := append([]Prediction(nil), candidates...)

	ApplyGreedyNMS(candidates, NMSConfig{IoUThreshold: 0.5, Limit: 10})
	assert.Equal(t, before, candidates)
}

func TestApplyGreedyNMS_NoSuppressionAtFullThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	candidates := randomPredictions(rng, 40)

	got := ApplyGreedyNMS(candidates, NMSConfig{IoUThreshold: 1.0, Limit: 15})
	require.Len(t, got, 15)

	ranked := ApplyGreedyNMS(candidates, NMSConfig{IoUThreshold: 1.0, Limit: len(candidates)})
	require.Len(t, ranked, len(candidates))
	assert.Equal(t, ranked[:15], got)
}

func TestApplyGreedyNMS_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		candidates := randomPredictions(rng, 1+rng.Intn(60))
		config := NMSConfig{
			IoUThreshold: 0.1 + rng.Float32()*0.8,
			Limit:        1 + rng.Intn(20),
		}

		got := ApplyGreedyNMS(candidates, config)

		require.LessOrEqual(t, len(got), config.Limit)
		require.LessOrEqual(t, len(got), len(candidates))
		for i := range got {
			if i > 0 {
				require.GreaterOrEqual(t, got[i-1].Score, got[i].Score, "round %d not sorted", round)
			}
			for j := i + 1; j < len(got); j++ {
				iou := images.CalculateIoU(got[i].Rect, got[j].Rect)
				require.LessOrEqual(t, iou, config.IoUThreshold, "round %d kept overlapping boxes", round)
			}
		}
		if len(got) > 0 {
			require.Equal(t, maxScore(candidates), got[0].Score)
		}
	}
}

func classIndices(preds []Prediction) []int {
	out := make([]int, len(preds))
	for i, p := range preds {
		out[i] = p.ClassIndex
	}
	return out
}

func maxScore(preds []Prediction) float32 {
	best := preds[0].Score
	for _, p := range preds[1:] {
		best = max(best, p.Score)
	}
	return best
}

// randomPredictions scatters distinct boxes over a 416x416 canvas.
func randomPredictions(rng *rand.Rand, n int) []Prediction {
	preds := make([]Prediction, n)
	for i := range preds {
		preds[i] = Prediction{
			ClassIndex: rng.Intn(80),
			Score:      rng.Float32(),
			Rect: box(
				float32(rng.Intn(380)),
				float32(rng.Intn(380)),
				float32(5+rng.Intn(120)),
				float32(5+rng.Intn(120)),
			),
		}
	}
	return preds
}

func BenchmarkApplyGreedyNMS(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	candidates := randomPredictions(rng, 200)
	config := NMSConfig{IoUThreshold: 0.5, Limit: 10}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ApplyGreedyNMS(candidates, config)
	}
}
