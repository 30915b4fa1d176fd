// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-yolo/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold is the overlap above which the lower-scored box is removed.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// Limit is the maximum number of predictions kept.
	Limit int `json:"limit" yaml:"limit"`
	// ClassAware restricts suppression to predictions of the same class.
	// With ClassAware set, boxes of different classes may overlap freely.
	ClassAware bool `json:"class_aware" yaml:"class_aware"`
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Candidates are ranked by descending score; exact ties keep their input
// order. Walking that ranking, each still-active candidate is kept and every
// later active candidate whose IoU with it exceeds config.IoUThreshold is
// suppressed for good. The walk stops as soon as config.Limit predictions
// are kept or no active candidates remain.
//
// The input slice is not modified.
//
// Arguments:
//   - candidates: Decoded detections in any order.
//   - config: NMS configuration.
//
// Returns:
//   - At most config.Limit predictions sorted by descending score. Nil when
//     there is nothing to keep.
func ApplyGreedyNMS(candidates []Prediction, config NMSConfig) []Prediction {
	n := len(candidates)
	if n == 0 || config.Limit <= 0 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return candidates[order[a]].Score > candidates[order[b]].Score
	})

	// active is indexed by rank, not by input position.
	active := make([]bool, n)
	for i := range active {
		active[i] = true
	}
	remaining := n

	filtered := make([]Prediction, 0, min(n, config.Limit))

	for i := 0; i < n && remaining > 0; i++ {
		if !active[i] {
			continue
		}

		anchor := candidates[order[i]]
		filtered = append(filtered, anchor)
		active[i] = false
		remaining--

		if len(filtered) >= config.Limit {
			break
		}

		for j := i + 1; j < n; j++ {
			if !active[j] {
				continue
			}
			other := candidates[order[j]]
			if config.ClassAware && other.ClassIndex != anchor.ClassIndex {
				continue
			}
			if images.CalculateIoU(anchor.Rect, other.Rect) > config.IoUThreshold {
				active[j] = false
				remaining--
			}
		}
	}

	return filtered
}
