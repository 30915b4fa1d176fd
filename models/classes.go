package models

import (
	"fmt"

	"github.com/nvr-ai/go-yolo/models/model"
)

// OutputClass represents one detection label.
type OutputClass struct {
	// The integer index returned by the model.
	Index int
	// The human-readable label.
	Name string
}

// OutputClassSet ties a family to its full list of labels.
type OutputClassSet struct {
	// Class set identifier.
	Family model.Family
	// Classes that are supported and mappable.
	Classes []OutputClass
	// nameToIdx for fast lookup by name
	nameToIdx map[string]int
}

// BuildNameIndexMap builds or rebuilds the name->index map.
func (s *OutputClassSet) BuildNameIndexMap() {
	s.nameToIdx = make(map[string]int, len(s.Classes))
	for _, c := range s.Classes {
		s.nameToIdx[c.Name] = c.Index
	}
}

// ClassManager holds all registered class sets.
//
// A ClassManager is read-only once built and may be shared between goroutines.
type ClassManager struct {
	sets map[model.Family]*OutputClassSet
}

// NewClassManager initializes and registers the given sets.
func NewClassManager(allSets ...OutputClassSet) *ClassManager {
	mgr := &ClassManager{sets: make(map[model.Family]*OutputClassSet)}
	for _, set := range allSets {
		set.BuildNameIndexMap()
		mgr.sets[set.Family] = &set
	}
	return mgr
}

// GetName returns the class name for a given family and index.
func (m *ClassManager) GetName(family model.Family, idx int) (string, error) {
	set, ok := m.sets[family]
	if !ok {
		return "", fmt.Errorf("family %q not registered", family)
	}
	if idx < 0 || idx >= len(set.Classes) {
		return "", fmt.Errorf("index %d out of range for family %q", idx, family)
	}
	return set.Classes[idx].Name, nil
}

// GetIndex returns the class index for a given family and name.
func (m *ClassManager) GetIndex(family model.Family, name string) (int, error) {
	set, ok := m.sets[family]
	if !ok {
		return -1, fmt.Errorf("family %q not registered", family)
	}
	idx, ok := set.nameToIdx[name]
	if !ok {
		return -1, fmt.Errorf("name %q not found in family %q", name, family)
	}
	return idx, nil
}

// Label returns the class name, or "unknown" when idx has no entry.
func (m *ClassManager) Label(family model.Family, idx int) string {
	name, err := m.GetName(family, idx)
	if err != nil {
		return "unknown"
	}
	return name
}

// YOLOClasses is the 80 COCO classes (no background) as the Tiny YOLOv2
// COCO model names them. YOLO models index directly into this zero-based list.
var YOLOClasses = OutputClassSet{
	Family: model.ModelFamilyCOCO,
	Classes: []OutputClass{
		{0, "person"},
		{1, "bicycle"},
		{2, "car"},
		{3, "motorbike"},
		{4, "airplane"},
		{5, "bus"},
		{6, "train"},
		{7, "truck"},
		{8, "boat"},
		{9, "traffic light"},
		{10, "fire hydrant"},
		{11, "stop sign"},
		{12, "parking meter"},
		{13, "bench"},
		{14, "bird"},
		{15, "cat"},
		{16, "dog"},
		{17, "horse"},
		{18, "sheep"},
		{19, "cow"},
		{20, "elephant"},
		{21, "bear"},
		{22, "zebra"},
		{23, "giraffe"},
		{24, "backpack"},
		{25, "umbrella"},
		{26, "handbag"},
		{27, "tie"},
		{28, "suitcase"},
		{29, "frisbee"},
		{30, "skis"},
		{31, "snowboard"},
		{32, "sports ball"},
		{33, "kite"},
		{34, "baseball bat"},
		{35, "baseball glove"},
		{36, "skateboard"},
		{37, "surfboard"},
		{38, "tennis racket"},
		{39, "bottle"},
		{40, "wine glass"},
		{41, "cup"},
		{42, "fork"},
		{43, "knife"},
		{44, "spoon"},
		{45, "bowl"},
		{46, "banana"},
		{47, "apple"},
		{48, "sandwich"},
		{49, "orange"},
		{50, "broccoli"},
		{51, "carrot"},
		{52, "hotdog"},
		{53, "pizza"},
		{54, "donut"},
		{55, "cake"},
		{56, "chair"},
		{57, "sofa"},
		{58, "plant"},
		{59, "bed"},
		{60, "table"},
		{61, "toilet"},
		{62, "tv"},
		{63, "laptop"},
		{64, "mouse"},
		{65, "remote"},
		{66, "keyboard"},
		{67, "phone"},
		{68, "microwave"},
		{69, "oven"},
		{70, "toaster"},
		{71, "sink"},
		{72, "refrigerator"},
		{73, "book"},
		{74, "clock"},
		{75, "vase"},
		{76, "scissors"},
		{77, "teddy bear"},
		{78, "hair drier"},
		{79, "toothbrush"},
	},
}

// PascalVOCClasses is the 20 Pascal VOC classes, zero-based, no background.
var PascalVOCClasses = OutputClassSet{
	Family: model.ModelFamilyVOC,
	Classes: []OutputClass{
		{0, "aeroplane"},
		{1, "bicycle"},
		{2, "bird"},
		{3, "boat"},
		{4, "bottle"},
		{5, "bus"},
		{6, "car"},
		{7, "cat"},
		{8, "chair"},
		{9, "cow"},
		{10, "diningtable"},
		{11, "dog"},
		{12, "horse"},
		{13, "motorbike"},
		{14, "person"},
		{15, "pottedplant"},
		{16, "sheep"},
		{17, "sofa"},
		{18, "train"},
		{19, "tvmonitor"},
	},
}

// AllClassSets collects every OutputClassSet in one place.
var AllClassSets = []OutputClassSet{
	YOLOClasses,
	PascalVOCClasses,
}

// DefaultClassManager returns a ClassManager with AllClassSets registered.
func DefaultClassManager() *ClassManager {
	return NewClassManager(AllClassSets...)
}

// LookupName returns the class name for a given family and index.
// If index is out of range, it returns an empty string.
func LookupName(family model.Family, idx int) string {
	for _, set := range AllClassSets {
		if set.Family == family {
			if idx >= 0 && idx < len(set.Classes) {
				return set.Classes[idx].Name
			}
			return ""
		}
	}
	return ""
}
