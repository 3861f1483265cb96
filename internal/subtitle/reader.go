package subtitle

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/asticode/go-astisub"
	"golang.org/x/text/language"
)

// FormatFromPath derives the subtitle format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT, nil
	case ".vtt":
		return FormatWebVTT, nil
	case ".ttml", ".dfxp":
		return FormatTTML, nil
	case ".ssa", ".ass":
		return FormatSSA, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format: %s", path)
	}
}

// IsSubtitleFile reports whether path has a supported subtitle extension.
func IsSubtitleFile(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}

// ReadFile reads a subtitle file into a track. The language is detected
// from the caption texts.
func ReadFile(path string) (*Track, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("subtitle file does not exist: %s", path)
		}
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}

	return ReadBytes(data, format, path)
}

// ReadBytes parses subtitle content of the given format. path is only
// recorded on the track.
func ReadBytes(data []byte, format Format, path string) (*Track, error) {
	r := bytes.NewReader(data)

	var (
		subs *astisub.Subtitles
		err  error
	)
	switch format {
	case FormatSRT:
		subs, err = astisub.ReadFromSRT(r)
	case FormatWebVTT:
		subs, err = astisub.ReadFromWebVTT(r)
	case FormatTTML:
		subs, err = astisub.ReadFromTTML(r)
	case FormatSSA:
		subs, err = astisub.ReadFromSSA(r)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s subtitles: %w", format, err)
	}

	captions := captionsFrom(subs)
	track := &Track{
		Format:   format,
		Path:     path,
		Captions: captions,
	}
	track.SetLanguage(detectLanguage(captions))
	return track, nil
}

func captionsFrom(subs *astisub.Subtitles) []*Caption {
	captions := make([]*Caption, 0, len(subs.Items))
	for i, item := range subs.Items {
		captions = append(captions, &Caption{
			ID:        strconv.Itoa(i + 1),
			StartTime: item.StartAt.Seconds(),
			EndTime:   item.EndAt.Seconds(),
			Text:      itemText(item),
		})
	}
	return captions
}

func itemText(item *astisub.Item) string {
	lines := make([]string, 0, len(item.Lines))
	for _, line := range item.Lines {
		parts := make([]string, 0, len(line.Items))
		for _, li := range line.Items {
			if text := strings.TrimSpace(li.Text); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return strings.Join(lines, "\n")
}

// detectLanguage picks the language most captions are written in.
func detectLanguage(captions []*Caption) language.Tag {
	if len(captions) == 0 {
		return language.Und
	}

	counts := make(map[string]int)
	for _, c := range captions {
		lang := whatlanggo.DetectLang(c.Text).Iso6391()
		if lang == "" {
			continue
		}
		counts[lang]++
	}

	var topLang string
	var topCount int
	for lang, count := range counts {
		if count > topCount || (count == topCount && lang < topLang) {
			topLang = lang
			topCount = count
		}
	}
	if topLang == "" {
		return language.Und
	}

	tag, err := language.Parse(topLang)
	if err != nil {
		return language.Und
	}
	return tag
}
