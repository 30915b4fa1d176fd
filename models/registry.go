// Package models - registry for models.
package models

import (
	"fmt"

	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/yolov2"
)

// Preset returns the decoder configuration registered under name.
//
// Each call returns a fresh value, so callers may adjust thresholds without
// affecting other users of the same preset.
//
// Arguments:
//   - name: The model name.
//
// Returns:
//   - yolov2.Config: The decoder configuration for the model.
//   - model.Family: The label family its class indices refer to.
//   - error: If the model name is not registered.
func Preset(name model.Name) (yolov2.Config, model.Family, error) {
	switch name {
	case model.ModelNameTinyYOLOv2COCO:
		return yolov2.COCOConfig(), model.ModelFamilyCOCO, nil
	case model.ModelNameTinyYOLOv2VOC:
		return yolov2.VOCConfig(), model.ModelFamilyVOC, nil
	default:
		return yolov2.Config{}, "", fmt.Errorf("unsupported model name: %s", name)
	}
}

// NewModel creates a new detection model instance based on the specified
// model name, using its preset configuration.
//
// Example:
//
// ```go
//
//	m, err := NewModel(model.ModelNameTinyYOLOv2COCO)
//	if err != nil {
//	    log.Fatalf("Failed to create detection model: %v", err)
//	}
//	preds, err := m.PostProcess(output)
//
// ```
func NewModel(name model.Name) (model.Model, error) {
	cfg, family, err := Preset(name)
	if err != nil {
		return nil, err
	}
	return NewModelWithConfig(name, family, cfg)
}

// NewModelWithConfig creates a model from an explicit decoder configuration.
func NewModelWithConfig(name model.Name, family model.Family, cfg yolov2.Config) (model.Model, error) {
	m, err := yolov2.NewModel(yolov2.NewModelArgs{
		Name:   name,
		Family: family,
		Config: cfg,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
