package yolov2

import "github.com/pkg/errors"

var (
	// ErrShapeMismatch is returned when the tensor does not hold exactly
	// GridH*GridW*len(Anchors)*(5+NumClasses) values.
	ErrShapeMismatch = errors.New("tensor shape mismatch")
	// ErrEmptyClassSet is returned when NumClasses is zero.
	ErrEmptyClassSet = errors.New("model must have at least one class")
	// ErrInvalidConfig is returned for any other unusable configuration.
	ErrInvalidConfig = errors.New("invalid decoder config")
	// ErrUnsupportedTensor is returned for tensors that are not float32.
	ErrUnsupportedTensor = errors.New("unsupported tensor")
)
