package transcript

import (
	"github.com/MimeLyc/transcript-panel/internal/cuepoint"
	"github.com/MimeLyc/transcript-panel/internal/subtitle"
)

// Highlight describes the highlighted captions after a time update.
// Show and Hide are only filled for deltas.
type Highlight struct {
	Kind     string   `json:"kind"`
	Time     float64  `json:"time"`
	Language string   `json:"language"`
	Active   []string `json:"active"`
	Show     []string `json:"show,omitempty"`
	Hide     []string `json:"hide,omitempty"`
	Changed  bool     `json:"changed"`
}

func (c *Controller) highlight(u cuepoint.Update[*subtitle.Caption], changed bool) Highlight {
	return Highlight{
		Kind:     u.Kind.String(),
		Time:     c.lastTime,
		Language: c.track.LanguageCode(),
		Active:   captionIDs(c.active.Items()),
		Show:     captionIDs(u.Show),
		Hide:     captionIDs(u.Hide),
		Changed:  changed,
	}
}

// Highlight returns the current highlight without moving the playback head.
func (c *Controller) Highlight() Highlight {
	return c.highlight(cuepoint.Update[*subtitle.Caption]{Kind: cuepoint.KindSnapshot}, false)
}

func captionIDs(captions []*subtitle.Caption) []string {
	ret := make([]string, 0, len(captions))
	for _, c := range captions {
		ret = append(ret, c.ID)
	}
	return ret
}
