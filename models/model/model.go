// Package model - Definitions shared by every detection model.
package model

import (
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// Family is the dataset family a model's class indices refer to.
type Family string

const (
	// ModelFamilyCOCO is the 80 COCO classes, zero-based, no background.
	ModelFamilyCOCO Family = "coco"
	// ModelFamilyVOC is the 20 Pascal VOC classes, zero-based, no background.
	ModelFamilyVOC Family = "voc"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameTinyYOLOv2COCO is Tiny YOLOv2 trained on COCO.
	ModelNameTinyYOLOv2COCO Name = "tiny-yolov2-coco"
	// ModelNameTinyYOLOv2VOC is Tiny YOLOv2 trained on Pascal VOC.
	ModelNameTinyYOLOv2VOC Name = "tiny-yolov2-voc"
)

// Model turns one raw output tensor into the final list of predictions.
//
// Implementations hold no state between calls and are safe for concurrent use.
type Model interface {
	Name() Name
	Family() Family
	PostProcess(output []float32) ([]postprocess.Prediction, error)
}
