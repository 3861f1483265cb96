package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/MimeLyc/transcript-panel/internal/cuepoint"
	"github.com/MimeLyc/transcript-panel/internal/subtitle"
)

func newTrack(tag language.Tag, captions ...*subtitle.Caption) *subtitle.Track {
	track := &subtitle.Track{Format: subtitle.FormatSRT, Captions: captions}
	track.SetLanguage(tag)
	return track
}

func englishTrack() *subtitle.Track {
	return newTrack(language.English,
		&subtitle.Caption{ID: "1", StartTime: 0, EndTime: 2, Text: "the cat sat"},
		&subtitle.Caption{ID: "2", StartTime: 2, EndTime: 4, Text: "cat and cat"},
		&subtitle.Caption{ID: "3", StartTime: 4, EndTime: 6, Text: "   "},
		&subtitle.Caption{ID: "4", StartTime: 6, EndTime: 8, Text: "the end"},
	)
}

func frenchTrack() *subtitle.Track {
	return newTrack(language.French,
		&subtitle.Caption{ID: "1", StartTime: 0, EndTime: 3, Text: "le chat"},
		&subtitle.Caption{ID: "2", StartTime: 3, EndTime: 8, Text: "un chat et un chat"},
	)
}

func TestNewController_Errors(t *testing.T) {
	_, err := NewController(nil)
	assert.ErrorIs(t, err, ErrNoTracks)

	_, err = NewController([]*subtitle.Track{englishTrack()}, WithLanguage("ja"))
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestController_Playback(t *testing.T) {
	c, err := NewController([]*subtitle.Track{englishTrack()})
	require.NoError(t, err)

	h := c.OnTimeUpdate(1)
	assert.Equal(t, cuepoint.KindSnapshot.String(), h.Kind)
	assert.Equal(t, []string{"1"}, h.Active)
	assert.True(t, h.Changed)

	h = c.OnTimeUpdate(1.5)
	assert.Equal(t, cuepoint.KindDelta.String(), h.Kind)
	assert.False(t, h.Changed)
	assert.Equal(t, []string{"1"}, h.Active)

	h = c.OnTimeUpdate(2.5)
	assert.Equal(t, []string{"2"}, h.Active)
	assert.Equal(t, []string{"2"}, h.Show)
	assert.Equal(t, []string{"1"}, h.Hide)

	// blank captions are never highlighted
	h = c.OnTimeUpdate(5)
	assert.Empty(t, h.Active)
	assert.Empty(t, h.Show)

	h = c.Seek(0.5)
	assert.Equal(t, cuepoint.KindSnapshot.String(), h.Kind)
	assert.Equal(t, []string{"1"}, h.Active)

	assert.Empty(t, c.CaptionsAt(5))
	require.Len(t, c.CaptionsAt(7), 1)
	assert.Equal(t, "4", c.CaptionsAt(7)[0].ID)
	assert.Equal(t, "1", c.Active()[0].ID)
}

func TestController_SelectTrack(t *testing.T) {
	c, err := NewController([]*subtitle.Track{englishTrack(), frenchTrack()})
	require.NoError(t, err)
	assert.Equal(t, "en", c.Track().LanguageCode())

	h, err := c.SelectTrack("fr")
	require.NoError(t, err)
	assert.Empty(t, h.Active)

	c.OnTimeUpdate(2.5)
	h, err = c.SelectTrack("en-US")
	require.NoError(t, err)
	assert.Equal(t, "en", h.Language)
	assert.Equal(t, cuepoint.KindSnapshot.String(), h.Kind)
	assert.Equal(t, []string{"2"}, h.Active)

	_, err = c.SelectTrack("de")
	assert.ErrorIs(t, err, ErrTrackNotFound)
	_, err = c.SelectTrack("???")
	assert.ErrorIs(t, err, ErrTrackNotFound)
	assert.Equal(t, "en", c.Track().LanguageCode())
	assert.Len(t, c.Tracks(), 2)
}

func TestController_Search(t *testing.T) {
	c, err := NewController([]*subtitle.Track{englishTrack(), frenchTrack()})
	require.NoError(t, err)

	idx := c.Search("cat")
	assert.Equal(t, 3, idx.Total)

	m, ok := c.CurrentMatch()
	require.True(t, ok)
	assert.Equal(t, Match{Ordinal: 1, Total: 3, CaptionID: "1", Offset: 4, Length: 3, StartTime: 0}, m)

	m, ok = c.NextMatch()
	require.True(t, ok)
	assert.Equal(t, "2", m.CaptionID)
	assert.Equal(t, 0, m.Offset)
	assert.Equal(t, 2.0, m.StartTime)

	m, _ = c.NextMatch()
	assert.Equal(t, 3, m.Ordinal)
	assert.Equal(t, 8, m.Offset)

	m, _ = c.NextMatch()
	assert.Equal(t, 1, m.Ordinal)

	m, _ = c.PrevMatch()
	assert.Equal(t, 3, m.Ordinal)

	// the query survives a language switch
	_, err = c.SelectTrack("fr")
	require.NoError(t, err)
	assert.Equal(t, "cat", c.SearchIndex().Query)
	assert.Zero(t, c.SearchIndex().Total)

	idx = c.Search("chat")
	assert.Equal(t, 3, idx.Total)

	c.Search("")
	_, ok = c.NextMatch()
	assert.False(t, ok)
	_, ok = c.CurrentMatch()
	assert.False(t, ok)
}
