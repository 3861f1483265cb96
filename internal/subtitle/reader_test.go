package subtitle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,500
Hello there, how are you doing today?

2
00:00:03,000 --> 00:00:04,000
I am fine, thank you very much for asking.
`

const sampleVTT = `WEBVTT

00:00:01.000 --> 00:00:02.000
Bonjour tout le monde, comment allez-vous?

00:00:02.500 --> 00:00:05.000
Je vais très bien, merci beaucoup.
`

func TestReadFile_SRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.srt")
	require.NoError(t, os.WriteFile(path, []byte(sampleSRT), 0o644))

	track, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, track.Captions, 2)

	first := track.Captions[0]
	assert.Equal(t, "1", first.ID)
	assert.InDelta(t, 1.0, first.StartTime, 1e-9)
	assert.InDelta(t, 2.5, first.EndTime, 1e-9)
	assert.Equal(t, "Hello there, how are you doing today?", first.Text)
	assert.Equal(t, FormatSRT, track.Format)
	assert.Equal(t, path, track.Path)
	assert.Equal(t, language.English, track.Language)
	assert.Equal(t, "English", track.Label)
}

func TestReadBytes_WebVTT(t *testing.T) {
	track, err := ReadBytes([]byte(sampleVTT), FormatWebVTT, "")
	require.NoError(t, err)
	require.Len(t, track.Captions, 2)

	assert.Equal(t, "2", track.Captions[1].ID)
	assert.InDelta(t, 2.5, track.Captions[1].StartTime, 1e-9)
	assert.Equal(t, language.French, track.Language)
}

func TestReadFile_Errors(t *testing.T) {
	_, err := ReadFile("/nonexistent/movie.srt")
	assert.Error(t, err)

	_, err = ReadFile("movie.txt")
	assert.Error(t, err)

	_, err = ReadBytes([]byte("x"), Format("doc"), "")
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.srt", FormatSRT, true},
		{"a.en.VTT", FormatWebVTT, true},
		{"a.ttml", FormatTTML, true},
		{"a.dfxp", FormatTTML, true},
		{"a.ass", FormatSSA, true},
		{"a.mkv", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if !tt.ok {
				assert.Error(t, err)
				assert.False(t, IsSubtitleFile(tt.path))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	captions := []*Caption{
		{Text: "Hello, world!"},
		{Text: "こんにちは、世界!"},
		{Text: "こんにちは、世界!"},
		{Text: "Привет, мир!"},
	}
	assert.Equal(t, language.Japanese, detectLanguage(captions))
	assert.Equal(t, language.Und, detectLanguage(nil))
}

func TestTrack_Caption(t *testing.T) {
	track := &Track{Captions: []*Caption{
		{ID: "1", Text: "a"},
		{ID: "2", Text: "b"},
		{ID: "x", Text: "c"},
	}}

	c, ok := track.Caption("2")
	require.True(t, ok)
	assert.Equal(t, "b", c.Text)

	c, ok = track.Caption("x")
	require.True(t, ok)
	assert.Equal(t, "c", c.Text)

	_, ok = track.Caption("9")
	assert.False(t, ok)
}

func TestCaption_Timing(t *testing.T) {
	c := &Caption{StartTime: 1, EndTime: -1, Text: "  "}

	_, ok := c.CueEnd()
	assert.False(t, ok)
	assert.True(t, c.IsBlank())

	assert.Equal(t, "Unknown", Label(language.Und))
	assert.Equal(t, "German", Label(language.German))
}
