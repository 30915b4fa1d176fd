package yolov2

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// Decode walks every grid cell and anchor of a raw output tensor and returns
// the candidates whose score (objectness x best class probability) is
// strictly above cfg.ConfidenceThreshold.
//
// For cell (cx, cy) and anchor b the box is decoded as:
//
//	x = (sigmoid(tx) + cx) / GridW * InputWidth
//	y = (sigmoid(ty) + cy) / GridH * InputHeight
//	w = anchor[b].Width  * exp(tw) / GridW * InputWidth
//	h = anchor[b].Height * exp(th) / GridH * InputHeight
//
// and emitted with its top-left corner at (x - w/2, y - h/2). Sizes are not
// clamped to the input.
//
// The output tensor is never modified. The order of the returned slice is
// unspecified; ApplyGreedyNMS re-sorts it.
//
// Arguments:
//   - output: The flat tensor values, laid out as cfg.Layout describes.
//   - cfg: The decoder configuration.
//
// Returns:
//   - The unsorted candidate predictions.
//   - ErrShapeMismatch, ErrEmptyClassSet or ErrInvalidConfig (wrapped) when
//     the tensor or configuration is unusable. cfg.NMS is not checked.
func Decode(output []float32, cfg Config) ([]postprocess.Prediction, error) {
	if err := cfg.validateDecoder(); err != nil {
		return nil, err
	}
	if len(output) != cfg.TensorLen() {
		return nil, errors.Wrapf(ErrShapeMismatch, "got %d values, want %d (%dx%dx%dx%d)",
			len(output), cfg.TensorLen(), cfg.GridH, cfg.GridW, len(cfg.Anchors), cfg.ChannelsPerAnchor())
	}

	var (
		numAnchors = len(cfg.Anchors)
		gridW      = float32(cfg.GridW)
		gridH      = float32(cfg.GridH)
		inW        = float32(cfg.InputWidth)
		inH        = float32(cfg.InputHeight)
		probs      = make([]float32, cfg.NumClasses)
		results    []postprocess.Prediction
	)

	for cy := 0; cy < cfg.GridH; cy++ {
		for cx := 0; cx < cfg.GridW; cx++ {
			for b := 0; b < numAnchors; b++ {
				base, stride := cfg.offset(cy, cx, b)
				at := func(k int) float32 { return output[base+k*stride] }

				confidence := postprocess.Sigmoid(at(4))
				// score = confidence * bestProb and bestProb <= 1, so a cell
				// whose objectness alone does not clear the threshold can't.
				if confidence <= cfg.ConfidenceThreshold {
					continue
				}

				for c := range probs {
					probs[c] = at(5 + c)
				}
				postprocess.SoftmaxInto(probs, probs)
				bestClass, bestProb := postprocess.Argmax(probs)

				score := confidence * bestProb
				if !(score > cfg.ConfidenceThreshold) {
					continue
				}

				x := (postprocess.Sigmoid(at(0)) + float32(cx)) / gridW * inW
				y := (postprocess.Sigmoid(at(1)) + float32(cy)) / gridH * inH
				w := cfg.Anchors[b].Width * math32.Exp(at(2)) / gridW * inW
				h := cfg.Anchors[b].Height * math32.Exp(at(3)) / gridH * inH

				results = append(results, postprocess.Prediction{
					ClassIndex: bestClass,
					Score:      score,
					Rect: images.Rect{
						X:      x - w/2,
						Y:      y - h/2,
						Width:  w,
						Height: h,
					},
				})
			}
		}
	}

	return results, nil
}

// offset returns the index of channel 0 for cell (cy, cx) anchor b and the
// distance between consecutive channels of that anchor.
func (c Config) offset(cy, cx, b int) (base, stride int) {
	channels := c.ChannelsPerAnchor()
	if c.Layout == LayoutCHW {
		plane := c.GridH * c.GridW
		return b*channels*plane + cy*c.GridW + cx, plane
	}
	return ((cy*c.GridW+cx)*len(c.Anchors) + b) * channels, 1
}

// DecodeTensor decodes a float32 dense tensor.
//
// The tensor must be rank 3, or rank 4 with a leading batch dimension of 1.
// Its shape must be (GridH, GridW, anchors*(5+NumClasses)) for LayoutHWC or
// (anchors*(5+NumClasses), GridH, GridW) for LayoutCHW. Views are
// materialized first; contiguous tensors are read in place.
//
// Arguments:
//   - t: The model output tensor.
//   - cfg: The decoder configuration.
//
// Returns:
//   - The unsorted candidate predictions.
//   - An error when the tensor dtype, rank or shape does not match cfg.
func DecodeTensor(t *tensor.Dense, cfg Config) ([]postprocess.Prediction, error) {
	if t == nil {
		return nil, errors.Wrap(ErrUnsupportedTensor, "nil tensor")
	}
	if err := cfg.validateDecoder(); err != nil {
		return nil, err
	}
	if t.Dtype() != tensor.Float32 {
		return nil, errors.Wrapf(ErrUnsupportedTensor, "dtype %v, want float32", t.Dtype())
	}

	shape := t.Shape()
	if len(shape) == 4 && shape[0] == 1 {
		shape = shape[1:]
	}
	if len(shape) != 3 {
		return nil, errors.Wrapf(ErrShapeMismatch, "shape %v, want rank 3", t.Shape())
	}

	depth := len(cfg.Anchors) * cfg.ChannelsPerAnchor()
	want := []int{cfg.GridH, cfg.GridW, depth}
	if cfg.Layout == LayoutCHW {
		want = []int{depth, cfg.GridH, cfg.GridW}
	}
	for i := range want {
		if shape[i] != want[i] {
			return nil, errors.Wrapf(ErrShapeMismatch, "shape %v, want %v (%s)", t.Shape(), want, layoutName(cfg.Layout))
		}
	}

	if t.IsMaterializable() {
		m, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return nil, errors.Wrap(ErrUnsupportedTensor, "cannot materialize view")
		}
		t = m
	}

	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedTensor, "backing %T, want []float32", t.Data())
	}

	return Decode(data, cfg)
}

// PostProcess decodes the tensor and suppresses overlapping candidates.
//
// Returns:
//   - At most cfg.NMS.Limit predictions sorted by descending score.
//   - Any error from Config.Validate or Decode.
func PostProcess(output []float32, cfg Config) ([]postprocess.Prediction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	candidates, err := Decode(output, cfg)
	if err != nil {
		return nil, err
	}
	return postprocess.ApplyGreedyNMS(candidates, cfg.NMS), nil
}

func layoutName(l Layout) Layout {
	if l == "" {
		return LayoutHWC
	}
	return l
}
