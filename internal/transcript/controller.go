package transcript

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/MimeLyc/transcript-panel/internal/cuepoint"
	"github.com/MimeLyc/transcript-panel/internal/search"
	"github.com/MimeLyc/transcript-panel/internal/subtitle"
	"github.com/MimeLyc/transcript-panel/pkg/log"
)

var (
	ErrNoTracks      = errors.New("no caption tracks")
	ErrTrackNotFound = errors.New("caption track not found")
)

type options struct {
	engineOpts []cuepoint.Option
	language   string
}

type Option func(*options)

// WithSeekThreshold sets the engine's reasonable seek threshold.
func WithSeekThreshold(threshold float64) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, cuepoint.WithReasonableSeekThreshold(threshold))
	}
}

// WithLanguage selects the initial track by language preference.
func WithLanguage(lang string) Option {
	return func(o *options) {
		o.language = lang
	}
}

// Controller keeps the transcript state of one panel: the selected track,
// the highlighted captions and the search cursor.
//
// A Controller is not safe for concurrent use.
type Controller struct {
	tracks     []*subtitle.Track
	engineOpts []cuepoint.Option

	track  *subtitle.Track
	engine *cuepoint.Engine[*subtitle.Caption]
	active *cuepoint.ActiveSet[*subtitle.Caption]
	index  search.Index

	lastTime float64
	hasTime  bool
}

func NewController(tracks []*subtitle.Track, opts ...Option) (*Controller, error) {
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Controller{
		tracks:     tracks,
		engineOpts: o.engineOpts,
		active:     cuepoint.NewActiveSet[*subtitle.Caption](),
	}

	track := tracks[0]
	if o.language != "" {
		found, err := c.findTrack(o.language)
		if err != nil {
			return nil, err
		}
		track = found
	}
	c.load(track)
	return c, nil
}

// Tracks returns the available tracks.
func (c *Controller) Tracks() []*subtitle.Track {
	return c.tracks
}

// Track returns the selected track.
func (c *Controller) Track() *subtitle.Track {
	return c.track
}

// SelectTrack switches language. The engine and the search index are
// rebuilt and the highlight is recomputed at the last known time.
func (c *Controller) SelectTrack(lang string) (Highlight, error) {
	track, err := c.findTrack(lang)
	if err != nil {
		return Highlight{}, err
	}
	if track != c.track {
		log.Debug("Switching transcript track %s -> %s", c.track.LanguageCode(), track.LanguageCode())
		c.load(track)
	}
	if !c.hasTime {
		return c.Highlight(), nil
	}
	return c.Seek(c.lastTime), nil
}

func (c *Controller) findTrack(lang string) (*subtitle.Track, error) {
	want, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTrackNotFound, lang, err)
	}
	for _, t := range c.tracks {
		if t.Language == want {
			return t, nil
		}
	}

	tags := make([]language.Tag, 0, len(c.tracks))
	for _, t := range c.tracks {
		tags = append(tags, t.Language)
	}
	_, i, confidence := language.NewMatcher(tags).Match(want)
	if confidence == language.No {
		return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, lang)
	}
	return c.tracks[i], nil
}

func (c *Controller) load(track *subtitle.Track) {
	c.track = track
	c.engine = cuepoint.New(track.Captions, c.engineOpts...)
	c.active.Reset()
	c.index = search.Build(track.Captions, c.index.Query)
}

// OnTimeUpdate follows regular playback.
func (c *Controller) OnTimeUpdate(t float64) Highlight {
	return c.update(t, false)
}

// Seek recomputes the highlight from scratch at t.
func (c *Controller) Seek(t float64) Highlight {
	return c.update(t, true)
}

func (c *Controller) update(t float64, force bool) Highlight {
	u := c.engine.UpdateTime(t, force, visible)
	changed := c.active.Apply(u)
	c.lastTime = t
	c.hasTime = true
	return c.highlight(u, changed)
}

// Active returns the highlighted captions.
func (c *Controller) Active() []*subtitle.Caption {
	return c.active.Items()
}

// CaptionsAt returns the captions visible at t without moving the
// playback head.
func (c *Controller) CaptionsAt(t float64) []*subtitle.Caption {
	ret := make([]*subtitle.Caption, 0)
	for _, caption := range c.engine.Snapshot(t) {
		if visible(caption) {
			ret = append(ret, caption)
		}
	}
	return ret
}

func visible(c *subtitle.Caption) bool {
	return !c.IsBlank()
}
