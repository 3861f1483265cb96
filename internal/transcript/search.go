package transcript

import (
	"github.com/MimeLyc/transcript-panel/internal/search"
)

// Match is the search result the panel scrolls to.
type Match struct {
	Ordinal   int     `json:"ordinal"`
	Total     int     `json:"total"`
	CaptionID string  `json:"caption_id"`
	Offset    int     `json:"offset"`
	Length    int     `json:"length"`
	StartTime float64 `json:"start_time"`
}

// Search replaces the query and rebuilds the match index. An empty query
// clears the search.
func (c *Controller) Search(query string) search.Index {
	c.index = search.Build(c.track.Captions, query)
	return c.index
}

// SearchIndex returns the current index.
func (c *Controller) SearchIndex() search.Index {
	return c.index
}

// CurrentMatch returns the active match, if any.
func (c *Controller) CurrentMatch() (Match, bool) {
	return c.match(c.index.Active)
}

// NextMatch moves to the following match, wrapping to the first.
func (c *Controller) NextMatch() (Match, bool) {
	return c.step(search.Next)
}

// PrevMatch moves to the preceding match, wrapping to the last.
func (c *Controller) PrevMatch() (Match, bool) {
	return c.step(search.Prev)
}

func (c *Controller) step(direction search.Direction) (Match, bool) {
	if c.index.Total == 0 {
		return Match{}, false
	}
	return c.match(c.index.Step(direction))
}

func (c *Controller) match(ordinal int) (Match, bool) {
	loc, ok := c.index.Locate(ordinal)
	if !ok {
		return Match{}, false
	}
	m := Match{
		Ordinal:   ordinal,
		Total:     c.index.Total,
		CaptionID: loc.ItemID,
		Offset:    loc.Offset,
		Length:    c.index.MatchLength,
	}
	if caption, ok := c.track.Caption(loc.ItemID); ok {
		m.StartTime = caption.StartTime
	}
	return m, true
}
