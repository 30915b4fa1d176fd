// Package postprocess - Postprocessing utilities for detection model outputs.
package postprocess

import "github.com/nvr-ai/go-yolo/images"

// Prediction represents a single decoded detection.
type Prediction struct {
	// The predicted class index, in [0, numClasses).
	ClassIndex int `json:"class_index"`
	// The combined objectness x class probability, in [0, 1].
	Score float32 `json:"score"`
	// The bounding box in model input pixel space.
	Rect images.Rect `json:"rect"`
}
