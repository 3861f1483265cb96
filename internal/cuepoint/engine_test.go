package cuepoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cue struct {
	id       string
	start    float64
	end      float64
	hasStart bool
	hasEnd   bool
}

func (c *cue) CueStart() (float64, bool) { return c.start, c.hasStart }
func (c *cue) CueEnd() (float64, bool)   { return c.end, c.hasEnd }

func span(id string, start, end float64) *cue {
	return &cue{id: id, start: start, end: end, hasStart: true, hasEnd: true}
}

func openEnded(id string, start float64) *cue {
	return &cue{id: id, start: start, hasStart: true}
}

func ids(items []*cue) []string {
	ret := make([]string, 0, len(items))
	for _, item := range items {
		ret = append(ret, item.id)
	}
	return ret
}

func TestEngine_EmptyCollection(t *testing.T) {
	e := New[*cue](nil)

	for _, now := range []float64{0, 5, -1, 1e9} {
		u := e.UpdateTime(now, false, nil)
		assert.Equal(t, KindSnapshot, u.Kind)
		assert.Empty(t, u.Snapshot)
	}
	assert.Empty(t, e.Snapshot(3))
	assert.Empty(t, e.Cuepoints())
}

func TestEngine_RepeatedTimeIsNoOp(t *testing.T) {
	e := New([]*cue{span("1", 5, 10)})

	first := e.UpdateTime(6, false, nil)
	require.Equal(t, KindSnapshot, first.Kind)
	assert.Equal(t, []string{"1"}, ids(first.Snapshot))

	second := e.UpdateTime(6, false, nil)
	assert.Equal(t, KindDelta, second.Kind)
	assert.True(t, second.IsEmptyDelta())
}

func TestEngine_BackwardSeekReturnsSnapshot(t *testing.T) {
	e := New([]*cue{span("1", 5, 10)})

	e.UpdateTime(6, false, nil)
	u := e.UpdateTime(3, false, nil)

	assert.Equal(t, KindSnapshot, u.Kind)
	assert.Empty(t, u.Snapshot)
}

func TestEngine_LargeForwardJumpReturnsSnapshot(t *testing.T) {
	e := New([]*cue{span("1", 5, 10)})

	u := e.UpdateTime(0, false, nil)
	require.Equal(t, KindSnapshot, u.Kind)
	assert.Empty(t, u.Snapshot)

	u = e.UpdateTime(20000, false, nil)
	assert.Equal(t, KindSnapshot, u.Kind)
	assert.Empty(t, u.Snapshot)
}

func TestEngine_ZeroDurationItemIsHiddenAtItsInstant(t *testing.T) {
	zero := span("zero", 5, 5)
	other := span("other", 5, 8)
	e := New([]*cue{zero, other})

	u := e.UpdateTime(5, false, nil)
	require.Equal(t, KindSnapshot, u.Kind)
	assert.Equal(t, []string{"other"}, ids(u.Snapshot))
}

func TestEngine_DeltaSequence(t *testing.T) {
	a := span("a", 1, 3)
	b := span("b", 2, 6)
	c := span("c", 4, 8)
	d := openEnded("d", 5)
	e := New([]*cue{a, b, c, d})

	u := e.UpdateTime(0, false, nil)
	require.Equal(t, KindSnapshot, u.Kind)
	assert.Empty(t, u.Snapshot)

	u = e.UpdateTime(1.5, false, nil)
	require.Equal(t, KindDelta, u.Kind)
	assert.Equal(t, []string{"a"}, ids(u.Show))
	assert.Empty(t, u.Hide)

	u = e.UpdateTime(1.5, false, nil)
	assert.True(t, u.IsEmptyDelta())

	u = e.UpdateTime(4.5, false, nil)
	require.Equal(t, KindDelta, u.Kind)
	assert.Equal(t, []string{"b", "c"}, ids(u.Show))
	assert.Equal(t, []string{"a"}, ids(u.Hide))

	u = e.UpdateTime(7, false, nil)
	require.Equal(t, KindDelta, u.Kind)
	assert.Equal(t, []string{"d"}, ids(u.Show))
	assert.Equal(t, []string{"b"}, ids(u.Hide))

	assert.Equal(t, []string{"c", "d"}, ids(e.Snapshot(7)))

	u = e.UpdateTime(9, false, nil)
	require.Equal(t, KindDelta, u.Kind)
	assert.Empty(t, u.Show)
	assert.Equal(t, []string{"c"}, ids(u.Hide))

	// past the last boundary nothing else can change
	u = e.UpdateTime(9.5, false, nil)
	assert.True(t, u.IsEmptyDelta())

	u = e.UpdateTime(2, false, nil)
	require.Equal(t, KindSnapshot, u.Kind)
	assert.Equal(t, []string{"a", "b"}, ids(u.Snapshot))
}

func TestEngine_ShowAndHideInSameWindowNetsToHide(t *testing.T) {
	a := span("a", 1, 3)
	b := span("b", 2, 6)
	e := New([]*cue{a, b})

	e.UpdateTime(0, false, nil)
	u := e.UpdateTime(3.5, false, nil)

	require.Equal(t, KindDelta, u.Kind)
	assert.Equal(t, []string{"b"}, ids(u.Show))
	assert.Equal(t, []string{"a"}, ids(u.Hide))
}

func TestEngine_DeltasFoldIntoSnapshot(t *testing.T) {
	items := []*cue{
		span("1", 0, 2.5),
		span("2", 1, 4),
		span("3", 2.5, 2.5),
		span("4", 3, 9),
		openEnded("5", 4),
		span("6", 6, 5),
		span("7", 7, 7.5),
		{id: "malformed"},
		{id: "end-only", end: 3, hasEnd: true},
	}
	e := New(items)
	set := NewActiveSet[*cue]()

	for now := 0.0; now <= 12; now += 0.25 {
		set.Apply(e.UpdateTime(now, false, nil))
		assert.ElementsMatch(t, ids(e.Snapshot(now)), ids(set.Items()), "at %v", now)
	}
}

func TestEngine_ForcedSnapshotWithoutPendingBoundary(t *testing.T) {
	item := span("1", 5, 10)
	e := New([]*cue{item})

	e.UpdateTime(6, false, nil)
	u := e.UpdateTime(6.5, true, nil)

	require.Equal(t, KindSnapshot, u.Kind)
	assert.Equal(t, []string{"1"}, ids(u.Snapshot))

	u = e.UpdateTime(6.5, false, nil)
	assert.True(t, u.IsEmptyDelta())
}

func TestEngine_FilterAppliesToEveryShape(t *testing.T) {
	x := span("x", 1, 5)
	y := span("y", 2, 6)
	e := New([]*cue{x, y})
	notX := func(c *cue) bool { return c != x }

	var seen []*cue
	for _, now := range []float64{0, 1.5, 3, 5.5, 1.5, 7, 3} {
		u := e.UpdateTime(now, false, notX)
		seen = append(seen, u.Snapshot...)
		seen = append(seen, u.Show...)
		seen = append(seen, u.Hide...)
	}
	forced := e.UpdateTime(3, true, notX)
	seen = append(seen, forced.Snapshot...)

	assert.NotContains(t, seen, x)
	assert.Contains(t, seen, y)
}

func TestEngine_SnapshotDoesNotMoveCursor(t *testing.T) {
	e := New([]*cue{span("1", 5, 10), span("2", 20, 30)})

	e.UpdateTime(6, false, nil)
	assert.Equal(t, []string{"2"}, ids(e.Snapshot(25)))
	assert.Empty(t, e.Snapshot(100))

	u := e.UpdateTime(6, false, nil)
	assert.True(t, u.IsEmptyDelta())
}

func TestEngine_CuepointsIsDefensiveCopy(t *testing.T) {
	a := span("a", 1, 2)
	e := New([]*cue{a})

	got := e.Cuepoints()
	got[0] = span("b", 0, 100)

	assert.Same(t, a, e.Cuepoints()[0])
	assert.Equal(t, []string{"a"}, ids(e.Snapshot(1.5)))
}

func TestEngine_ReturnsSameItemReferences(t *testing.T) {
	a := span("a", 1, 2)
	e := New([]*cue{a})

	u := e.UpdateTime(1.5, false, nil)
	require.Len(t, u.Snapshot, 1)
	assert.Same(t, a, u.Snapshot[0])
}

func TestEngine_SeekThreshold(t *testing.T) {
	items := []*cue{span("1", 5, 10)}

	assert.Equal(t, float64(DefaultReasonableSeekThreshold), New(items).ReasonableSeekThreshold())
	assert.Equal(t, float64(DefaultReasonableSeekThreshold), New(items, WithReasonableSeekThreshold(10)).ReasonableSeekThreshold())
	assert.Equal(t, float64(DefaultReasonableSeekThreshold), New(items, WithReasonableSeekThreshold(math.NaN())).ReasonableSeekThreshold())

	e := New(items, WithReasonableSeekThreshold(5000))
	assert.Equal(t, 5000.0, e.ReasonableSeekThreshold())

	e.UpdateTime(0, false, nil)
	u := e.UpdateTime(3000, false, nil)
	require.Equal(t, KindDelta, u.Kind)
	assert.Empty(t, u.Show)
	assert.Equal(t, []string{"1"}, ids(u.Hide))
}

func TestEngine_NaNTimeIsAbsorbed(t *testing.T) {
	e := New([]*cue{span("1", 5, 10)})

	u := e.UpdateTime(math.NaN(), false, nil)
	assert.Equal(t, KindSnapshot, u.Kind)
	assert.Empty(t, u.Snapshot)

	u = e.UpdateTime(math.NaN(), false, nil)
	assert.True(t, u.IsEmptyDelta())

	u = e.UpdateTime(6, false, nil)
	assert.Equal(t, []string{"1"}, ids(u.Show))
}

func TestEngine_ClosestIndex(t *testing.T) {
	e := New([]*cue{span("a", 5, 10), span("b", 5, 12), span("c", 10, 15)})

	tests := []struct {
		name string
		time float64
		want int
	}{
		{"before all events", 4.9, -1},
		{"negative", -3, -1},
		{"ties at first timestamp", 5, 1},
		{"between boundaries", 7, 1},
		{"ties at shared end and start", 10, 3},
		{"after tie group", 11, 3},
		{"exact last", 15, 5},
		{"past last", 100, 5},
		{"nan", math.NaN(), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.closestIndex(tt.time))
		})
	}
}

func TestEngine_MalformedItemsAreIgnored(t *testing.T) {
	e := New([]*cue{
		{id: "none"},
		{id: "negative", start: -1, end: -1, hasStart: true, hasEnd: true},
		{id: "end-only", end: 4, hasEnd: true},
	})

	assert.Len(t, e.events, 1)

	u := e.UpdateTime(5, false, nil)
	assert.Equal(t, KindSnapshot, u.Kind)
	assert.Empty(t, u.Snapshot)
	assert.Len(t, e.Cuepoints(), 3)
}
