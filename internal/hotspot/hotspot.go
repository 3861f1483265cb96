// Package hotspot describes clickable regions drawn over the video for a
// time range, and tracks which of them are visible during playback.
package hotspot

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Rect is a region relative to the video frame; every field is in [0,1].
type Rect struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Hotspot is a region visible from Start until End (seconds).
// A nil End keeps the hotspot until the end of the media.
type Hotspot struct {
	ID    string   `yaml:"id" json:"id"`
	Label string   `yaml:"label" json:"label"`
	URL   string   `yaml:"url,omitempty" json:"url,omitempty"`
	Start *float64 `yaml:"start" json:"start,omitempty"`
	End   *float64 `yaml:"end,omitempty" json:"end,omitempty"`
	Rect  Rect     `yaml:"rect" json:"rect"`
}

func (h *Hotspot) CueStart() (float64, bool) {
	if h.Start == nil {
		return 0, false
	}
	return *h.Start, true
}

func (h *Hotspot) CueEnd() (float64, bool) {
	if h.End == nil {
		return 0, false
	}
	return *h.End, true
}

type document struct {
	Hotspots []*Hotspot `yaml:"hotspots"`
}

// Load reads hotspots from a YAML file.
func Load(path string) ([]*Hotspot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hotspots: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML hotspot document.
func Parse(data []byte) ([]*Hotspot, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse hotspots: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Hotspots))
	var errs []error
	for i, h := range doc.Hotspots {
		if h == nil {
			errs = append(errs, fmt.Errorf("hotspot #%d is empty", i+1))
			continue
		}
		if err := h.validate(); err != nil {
			errs = append(errs, fmt.Errorf("hotspot #%d: %w", i+1, err))
			continue
		}
		if _, dup := seen[h.ID]; dup {
			errs = append(errs, fmt.Errorf("hotspot #%d: duplicate id %q", i+1, h.ID))
			continue
		}
		seen[h.ID] = struct{}{}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return doc.Hotspots, nil
}

func (h *Hotspot) validate() error {
	if h.ID == "" {
		return errors.New("id is required")
	}
	if h.Start == nil && h.End == nil {
		return errors.New("start or end is required")
	}
	r := h.Rect
	for name, v := range map[string]float64{"x": r.X, "y": r.Y, "width": r.Width, "height": r.Height} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("rect %s must be within [0,1], got %v", name, v)
		}
	}
	if r.X+r.Width > 1 || r.Y+r.Height > 1 {
		return errors.New("rect exceeds the frame")
	}
	return nil
}
