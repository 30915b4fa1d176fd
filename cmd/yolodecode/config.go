package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/yolov2"
)

// FileConfig is the YAML configuration accepted by -config.
//
// Example:
//
//	model: tiny-yolov2-coco
//	max_in_flight: 2
//	classes: [person, dog, cat]
//	decoder:
//	  confidence_threshold: 0.4
//	  layout: chw
//	  nms:
//	    iou_threshold: 0.45
type FileConfig struct {
	// Model is the preset the decoder starts from. Empty means no preset;
	// the decoder section must then describe the whole tensor.
	Model model.Name `yaml:"model"`
	// Decoder overrides fields of the preset configuration.
	Decoder yaml.Node `yaml:"decoder"`
	// MaxInFlight bounds concurrent detection cycles.
	MaxInFlight int64 `yaml:"max_in_flight"`
	// Labels selects the class name table. Defaults to the preset's family.
	Labels model.Family `yaml:"labels"`
	// Classes limits output to these class names. Empty prints every class.
	Classes []string `yaml:"classes"`
}

// LoadConfig reads a FileConfig from a YAML file.
func LoadConfig(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &cfg, nil
}

// Resolve returns the decoder configuration with overrides applied and the
// label family to display.
func (f *FileConfig) Resolve() (yolov2.Config, model.Family, error) {
	var (
		cfg    yolov2.Config
		family model.Family
		err    error
	)
	if f.Model != "" {
		cfg, family, err = models.Preset(f.Model)
		if err != nil {
			return yolov2.Config{}, "", err
		}
	}

	if !f.Decoder.IsZero() {
		if err := f.Decoder.Decode(&cfg); err != nil {
			return yolov2.Config{}, "", errors.Wrap(err, "decoding decoder overrides")
		}
	}
	if f.Labels != "" {
		family = f.Labels
	}

	if err := cfg.Validate(); err != nil {
		return yolov2.Config{}, "", err
	}
	return cfg, family, nil
}

// classFilter is the set of class indices to print. A nil filter keeps all.
type classFilter map[int]struct{}

// resolveClassFilter maps class names to indices in family's label table.
func resolveClassFilter(classes *models.ClassManager, family model.Family, names []string) (classFilter, error) {
	if len(names) == 0 {
		return nil, nil
	}
	filter := make(classFilter, len(names))
	for _, name := range names {
		idx, err := classes.GetIndex(family, strings.TrimSpace(name))
		if err != nil {
			return nil, errors.Wrap(err, "resolving class filter")
		}
		filter[idx] = struct{}{}
	}
	return filter, nil
}

func (f classFilter) keep(idx int) bool {
	if f == nil {
		return true
	}
	_, ok := f[idx]
	return ok
}
