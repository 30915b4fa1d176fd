// Package yolov2 - decodes grid/anchor YOLOv2-style output tensors.
package yolov2

import (
	"math"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// Layout describes how the output tensor is laid out in memory.
type Layout string

const (
	// LayoutHWC is [gridRow][gridCol][anchor*(5+numClasses)+k]. The zero
	// value of Layout means HWC.
	LayoutHWC Layout = "hwc"
	// LayoutCHW is [anchor*(5+numClasses)+k][gridRow][gridCol], the
	// channel-major layout Core ML and most NPU runtimes emit.
	LayoutCHW Layout = "chw"
)

// Anchor is a prior box shape in grid-cell units.
type Anchor struct {
	Width  float32 `json:"width" yaml:"width"`
	Height float32 `json:"height" yaml:"height"`
}

// Config is the immutable description of one model's output tensor and the
// thresholds used to turn it into predictions.
type Config struct {
	// GridW and GridH are the output grid dimensions.
	GridW int `json:"grid_w" yaml:"grid_w"`
	GridH int `json:"grid_h" yaml:"grid_h"`
	// Anchors holds one prior per anchor slot in each grid cell.
	Anchors []Anchor `json:"anchors" yaml:"anchors"`
	// NumClasses is the number of class logits per anchor.
	NumClasses int `json:"num_classes" yaml:"num_classes"`
	// InputWidth and InputHeight are the model input resolution in pixels;
	// decoded boxes are expressed in this space.
	InputWidth  int `json:"input_width" yaml:"input_width"`
	InputHeight int `json:"input_height" yaml:"input_height"`
	// ConfidenceThreshold drops candidates whose score is not strictly above it.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold"`
	// Layout selects HWC (default) or CHW indexing.
	Layout Layout `json:"layout" yaml:"layout"`
	// NMS configures suppression of overlapping candidates.
	NMS postprocess.NMSConfig `json:"nms" yaml:"nms"`
}

// COCOConfig returns the configuration of Tiny YOLOv2 trained on COCO:
//   - Input: 416x416
//   - Grid: 13x13
//   - Anchors: (0.57273x0.677385), (1.87446x2.06253), (3.33843x5.47434),
//     (7.88282x3.52778), (9.77052x9.16828)
//   - Object Classes: 80
//   - Confidence Threshold: 0.3
//   - NMS Threshold: 0.5
//   - Limit: 10
func COCOConfig() Config {
	return Config{
		GridW: 13,
		GridH: 13,
		Anchors: []Anchor{
			{0.57273, 0.677385},
			{1.87446, 2.06253},
			{3.33843, 5.47434},
			{7.88282, 3.52778},
			{9.77052, 9.16828},
		},
		NumClasses:          80,
		InputWidth:          416,
		InputHeight:         416,
		ConfidenceThreshold: 0.3,
		Layout:              LayoutHWC,
		NMS: postprocess.NMSConfig{
			IoUThreshold: 0.5,
			Limit:        10,
		},
	}
}

// VOCConfig returns the configuration of Tiny YOLOv2 trained on Pascal VOC
// (20 classes). Everything except the anchors and class count matches
// COCOConfig.
func VOCConfig() Config {
	c := COCOConfig()
	c.Anchors = []Anchor{
		{1.08, 1.19},
		{3.42, 4.41},
		{6.63, 11.38},
		{9.42, 5.11},
		{16.62, 10.52},
	}
	c.NumClasses = 20
	return c
}

// ChannelsPerAnchor is the number of values packed per anchor:
// tx, ty, tw, th, objectness and one logit per class.
func (c Config) ChannelsPerAnchor() int {
	return 5 + c.NumClasses
}

// TensorLen is the exact element count an output tensor must have.
func (c Config) TensorLen() int {
	return c.GridH * c.GridW * len(c.Anchors) * c.ChannelsPerAnchor()
}

// Validate reports configuration errors that would make decoding or
// suppression meaningless.
func (c Config) Validate() error {
	if err := c.validateDecoder(); err != nil {
		return err
	}
	if c.NMS.Limit <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "nms limit must be positive, got %d", c.NMS.Limit)
	}
	return nil
}

// validateDecoder checks the fields Decode reads; NMS settings are ignored.
func (c Config) validateDecoder() error {
	if c.NumClasses <= 0 {
		return errors.Wrapf(ErrEmptyClassSet, "num_classes=%d", c.NumClasses)
	}
	if c.NumClasses > math.MaxInt-5 {
		return errors.Wrapf(ErrInvalidConfig, "num_classes=%d overflows channel count", c.NumClasses)
	}
	if c.GridW <= 0 || c.GridH <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "grid must be positive, got %dx%d", c.GridW, c.GridH)
	}
	if len(c.Anchors) == 0 {
		return errors.Wrap(ErrInvalidConfig, "at least one anchor is required")
	}
	for i, a := range c.Anchors {
		if !(a.Width > 0) || !(a.Height > 0) {
			return errors.Wrapf(ErrInvalidConfig, "anchor %d must be positive, got %vx%v", i, a.Width, a.Height)
		}
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "input size must be positive, got %dx%d", c.InputWidth, c.InputHeight)
	}
	// TensorLen must not wrap, or a short tensor would pass the length check.
	n := 1
	for _, f := range []int{c.GridH, c.GridW, len(c.Anchors), c.ChannelsPerAnchor()} {
		if f > math.MaxInt/n {
			return errors.Wrapf(ErrInvalidConfig, "tensor size %dx%dx%dx%d overflows int",
				c.GridH, c.GridW, len(c.Anchors), c.ChannelsPerAnchor())
		}
		n *= f
	}
	switch c.Layout {
	case "", LayoutHWC, LayoutCHW:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown layout %q", c.Layout)
	}
	return nil
}
