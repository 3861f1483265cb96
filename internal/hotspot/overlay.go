package hotspot

import (
	"sync"

	"github.com/MimeLyc/transcript-panel/internal/cuepoint"
)

// Overlay tracks visible hotspots for one playback.
type Overlay struct {
	mu      sync.Mutex
	engine  *cuepoint.Engine[*Hotspot]
	visible *cuepoint.ActiveSet[*Hotspot]
}

func NewOverlay(hotspots []*Hotspot, opts ...cuepoint.Option) *Overlay {
	return &Overlay{
		engine:  cuepoint.New(hotspots, opts...),
		visible: cuepoint.NewActiveSet[*Hotspot](),
	}
}

// Fork returns an overlay over the same hotspots and seek threshold with a
// playback head of its own.
func (o *Overlay) Fork() *Overlay {
	return NewOverlay(o.engine.Cuepoints(), cuepoint.WithReasonableSeekThreshold(o.engine.ReasonableSeekThreshold()))
}

// Update moves the playback head and returns the visible hotspots and
// whether that set changed. force re-syncs from a snapshot.
func (o *Overlay) Update(t float64, force bool) ([]*Hotspot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	u := o.engine.UpdateTime(t, force, nil)
	if u.IsEmptyDelta() {
		return o.visible.Items(), false
	}
	changed := o.visible.Apply(u)
	return o.visible.Items(), changed
}

// Visible returns the hotspots shown at the last Update.
func (o *Overlay) Visible() []*Hotspot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible.Items()
}

// At returns the hotspots visible at t without moving the playback head.
func (o *Overlay) At(t float64) []*Hotspot {
	return o.engine.Snapshot(t)
}

func (o *Overlay) Hotspots() []*Hotspot {
	return o.engine.Cuepoints()
}
