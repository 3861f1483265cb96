package subtitle

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Format of a subtitle file.
type Format string

const (
	FormatSRT    Format = "srt"
	FormatWebVTT Format = "vtt"
	FormatTTML   Format = "ttml"
	FormatSSA    Format = "ssa"
)

// Caption is a single timed line of a transcript. Times are in seconds;
// a negative EndTime means the caption stays until the end of the media.
type Caption struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

func (c *Caption) CueStart() (float64, bool) { return c.StartTime, true }
func (c *Caption) CueEnd() (float64, bool)   { return c.EndTime, c.EndTime >= 0 }

func (c *Caption) SearchID() string   { return c.ID }
func (c *Caption) SearchText() string { return c.Text }

// IsBlank reports whether the caption has no visible text.
func (c *Caption) IsBlank() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Track is the caption list of one language.
type Track struct {
	Language language.Tag `json:"-"`
	Label    string       `json:"label"`
	Format   Format       `json:"format"`
	Path     string       `json:"path,omitempty"`
	Captions []*Caption   `json:"captions"`
}

// LanguageCode returns the BCP 47 form of the track language.
func (t *Track) LanguageCode() string {
	return t.Language.String()
}

// Caption finds a caption by id.
func (t *Track) Caption(id string) (*Caption, bool) {
	// ids are positions, so try the direct slot first
	if n, err := strconv.Atoi(id); err == nil && n >= 1 && n <= len(t.Captions) {
		if c := t.Captions[n-1]; c.ID == id {
			return c, true
		}
	}
	for _, c := range t.Captions {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// SetLanguage updates the language and the display label.
func (t *Track) SetLanguage(tag language.Tag) {
	t.Language = tag
	t.Label = Label(tag)
}

// Label returns the English display name of a language.
func Label(tag language.Tag) string {
	if tag == language.Und {
		return "Unknown"
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return tag.String()
}
