package cuepoint

import "math"

// DefaultReasonableSeekThreshold is the smallest forward gap, past the next
// pending boundary, that is classified as a seek rather than playback. It is
// expressed in the caller's clock unit.
const DefaultReasonableSeekThreshold = 2000

// Timed is the capability an item needs to be indexed by the engine.
// A false flag or a negative value means the bound is undefined.
type Timed interface {
	comparable
	CueStart() (float64, bool)
	CueEnd() (float64, bool)
}

// Filter decides whether an item may be reported to the caller.
type Filter[T any] func(item T) bool

// Kind tells which shape an Update carries.
type Kind int

const (
	// KindSnapshot replaces the caller's active set.
	KindSnapshot Kind = iota
	// KindDelta adds Show and removes Hide from the caller's active set.
	KindDelta
)

func (k Kind) String() string {
	switch k {
	case KindSnapshot:
		return "snapshot"
	case KindDelta:
		return "delta"
	default:
		return "unknown"
	}
}

// Update is the result of a time query.
// Show and Hide are disjoint, so they can be applied in any order.
type Update[T any] struct {
	Kind     Kind
	Snapshot []T
	Show     []T
	Hide     []T
}

// IsEmptyDelta reports whether the update is a delta with nothing to apply.
func (u Update[T]) IsEmptyDelta() bool {
	return u.Kind == KindDelta && len(u.Show) == 0 && len(u.Hide) == 0
}

type eventType int

const (
	eventShow eventType = iota
	eventHide
)

type changeEvent[T any] struct {
	time float64
	typ  eventType
	item T
}

// cursor is the engine's playback-head state. started == false means no
// query has been handled yet and the other fields are meaningless.
type cursor struct {
	started   bool
	lastTime  float64
	lastIndex int
	nextTime  float64
}

type options struct {
	reasonableSeekThreshold float64
}

// Option configures an Engine.
type Option func(*options)

// WithReasonableSeekThreshold overrides the seek threshold. Values below
// DefaultReasonableSeekThreshold are raised to it.
func WithReasonableSeekThreshold(threshold float64) Option {
	return func(o *options) {
		if math.IsNaN(threshold) {
			return
		}
		o.reasonableSeekThreshold = max(DefaultReasonableSeekThreshold, threshold)
	}
}
