package yolov2

import (
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// NewModelArgs is the arguments for creating a new YOLOv2 model.
type NewModelArgs struct {
	Name   model.Name   `json:"name" yaml:"name"`
	Family model.Family `json:"family" yaml:"family"`
	Config Config       `json:"config" yaml:"config"`
}

// YOLOv2 is a grid/anchor detector with a fixed decoder configuration.
type YOLOv2 struct {
	name   model.Name
	family model.Family
	config Config
}

// NewModel creates a new model.
//
// Arguments:
//   - args: The arguments for creating a new model.
//
// Returns:
//   - The model.
//   - An error if args.Config does not validate.
func NewModel(args NewModelArgs) (*YOLOv2, error) {
	if err := args.Config.Validate(); err != nil {
		return nil, err
	}

	cfg := args.Config
	cfg.Anchors = append([]Anchor(nil), args.Config.Anchors...)

	return &YOLOv2{
		name:   args.Name,
		family: args.Family,
		config: cfg,
	}, nil
}

// Name returns the model name.
func (m *YOLOv2) Name() model.Name {
	return m.name
}

// Family returns the label family the class indices refer to.
func (m *YOLOv2) Family() model.Family {
	return m.family
}

// Config returns a copy of the decoder configuration.
func (m *YOLOv2) Config() Config {
	cfg := m.config
	cfg.Anchors = append([]Anchor(nil), m.config.Anchors...)
	return cfg
}

// PostProcess decodes the output tensor and applies NMS.
func (m *YOLOv2) PostProcess(output []float32) ([]postprocess.Prediction, error) {
	return PostProcess(output, m.config)
}
