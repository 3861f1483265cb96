package hotspot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
hotspots:
  - id: logo
    label: Sponsor
    url: https://example.com
    start: 2
    end: 6
    rect: {x: 0.8, y: 0.05, width: 0.15, height: 0.1}
  - id: chapter
    label: Next chapter
    start: 4
    rect: {x: 0.1, y: 0.8, width: 0.3, height: 0.1}
`

func ids(hs []*Hotspot) []string {
	ret := make([]string, 0, len(hs))
	for _, h := range hs {
		ret = append(ret, h.ID)
	}
	return ret
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotspots.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	hs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "Sponsor", hs[0].Label)
	require.NotNil(t, hs[0].End)
	assert.Equal(t, 6.0, *hs[0].End)
	assert.Nil(t, hs[1].End)
	assert.InDelta(t, 0.3, hs[1].Rect.Width, 1e-9)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "hotspots:\n  - start: 1\n    rect: {x: 0, y: 0, width: 0.1, height: 0.1}\n"},
		{"missing times", "hotspots:\n  - id: a\n    rect: {x: 0, y: 0, width: 0.1, height: 0.1}\n"},
		{"rect out of range", "hotspots:\n  - id: a\n    start: 1\n    rect: {x: 1.2, y: 0, width: 0.1, height: 0.1}\n"},
		{"rect nan", "hotspots:\n  - id: a\n    start: 1\n    rect: {x: .nan, y: 0, width: 0.1, height: 0.1}\n"},
		{"rect exceeds frame", "hotspots:\n  - id: a\n    start: 1\n    rect: {x: 0.9, y: 0, width: 0.5, height: 0.1}\n"},
		{"duplicate id", "hotspots:\n  - id: a\n    start: 1\n  - id: a\n    start: 2\n"},
		{"not yaml", "hotspots: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestOverlay_Update(t *testing.T) {
	hs, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	o := NewOverlay(hs)

	visible, changed := o.Update(0, false)
	assert.Empty(t, visible)
	assert.False(t, changed)

	visible, changed = o.Update(3, false)
	assert.True(t, changed)
	assert.Equal(t, []string{"logo"}, ids(visible))

	visible, _ = o.Update(5, false)
	assert.Equal(t, []string{"logo", "chapter"}, ids(visible))

	visible, changed = o.Update(7, false)
	assert.True(t, changed)
	assert.Equal(t, []string{"chapter"}, ids(visible))

	// seek back
	visible, _ = o.Update(2.5, false)
	assert.Equal(t, []string{"logo"}, ids(visible))

	assert.Equal(t, []string{"logo", "chapter"}, ids(o.At(4)))
	assert.Len(t, o.Hotspots(), 2)
}

func TestOverlay_ForkHasOwnPlaybackHead(t *testing.T) {
	hs, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	shared := NewOverlay(hs)

	a := shared.Fork()
	b := shared.Fork()

	visible, changed := a.Update(3, false)
	assert.True(t, changed)
	assert.Equal(t, []string{"logo"}, ids(visible))
	assert.Equal(t, []string{"logo"}, ids(a.Visible()))

	assert.Empty(t, b.Visible())
	assert.Empty(t, shared.Visible())

	visible, changed = b.Update(7, false)
	assert.True(t, changed)
	assert.Equal(t, []string{"chapter"}, ids(visible))

	// staying between boundaries changes nothing
	visible, changed = b.Update(7.5, false)
	assert.False(t, changed)
	assert.Equal(t, []string{"chapter"}, ids(visible))

	visible, changed = b.Update(7.5, true)
	assert.False(t, changed)
	assert.Equal(t, []string{"chapter"}, ids(visible))
}
