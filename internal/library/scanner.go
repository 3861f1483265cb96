package library

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/MimeLyc/transcript-panel/internal/subtitle"
	"github.com/MimeLyc/transcript-panel/pkg/file"
	"github.com/MimeLyc/transcript-panel/pkg/log"
)

var videoExts = []string{".mkv", ".mp4", ".m4v", ".mov", ".avi", ".webm"}

type scannerOptions struct {
	cacheTTL    time.Duration
	concurrency int
}

type Option func(*scannerOptions)

func WithCacheTTL(ttl time.Duration) Option {
	return func(o *scannerOptions) {
		o.cacheTTL = ttl
	}
}

// WithConcurrency bounds the parallel track loads of one media item.
func WithConcurrency(n int) Option {
	return func(o *scannerOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

type listCache struct {
	version uint64
	scanned time.Time
	media   []Media
}

type trackCache struct {
	version uint64
	loaded  time.Time
	tracks  []*subtitle.Track
}

// Scanner discovers media and their subtitle tracks under a root
// directory. Results are cached until the TTL expires or Invalidate is
// called.
type Scanner struct {
	root        string
	concurrency int

	mu       sync.RWMutex
	cacheTTL time.Duration
	listing  *listCache
	tracks   map[string]*trackCache
	version  uint64
}

func NewScanner(root string, opts ...Option) *Scanner {
	options := scannerOptions{
		cacheTTL:    5 * time.Minute,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Scanner{
		root:        root,
		concurrency: options.concurrency,
		cacheTTL:    options.cacheTTL,
		tracks:      make(map[string]*trackCache),
	}
}

func (s *Scanner) Root() string {
	return s.root
}

// Invalidate drops every cached listing and track.
func (s *Scanner) Invalidate() {
	s.mu.Lock()
	s.listing = nil
	s.tracks = make(map[string]*trackCache)
	s.version++
	s.mu.Unlock()
}

func (s *Scanner) fresh(at time.Time) bool {
	return s.cacheTTL <= 0 || time.Since(at) < s.cacheTTL
}

// List returns every media item, sorted by id.
func (s *Scanner) List(ctx context.Context) ([]Media, error) {
	s.mu.RLock()
	if s.listing != nil && s.listing.version == s.version && s.fresh(s.listing.scanned) {
		cached := cloneMedia(s.listing.media)
		s.mu.RUnlock()
		return cached, nil
	}
	version := s.version
	s.mu.RUnlock()

	media, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.version == version {
		s.listing = &listCache{version: version, scanned: time.Now(), media: media}
	}
	s.mu.Unlock()

	return cloneMedia(media), nil
}

// Media returns one media item.
func (s *Scanner) Media(ctx context.Context, id string) (Media, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Media{}, err
	}
	for _, m := range all {
		if m.ID == id {
			return m, nil
		}
	}
	return Media{}, NewError(ErrNotFound, "media not found").WithContext("id", id)
}

// LoadTracks parses every subtitle file of a media item concurrently.
func (s *Scanner) LoadTracks(ctx context.Context, id string) ([]*subtitle.Track, error) {
	s.mu.RLock()
	if c, ok := s.tracks[id]; ok && c.version == s.version && s.fresh(c.loaded) {
		tracks := c.tracks
		s.mu.RUnlock()
		return tracks, nil
	}
	version := s.version
	s.mu.RUnlock()

	media, err := s.Media(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(media.Tracks) == 0 {
		return nil, NewError(ErrNotFound, "media has no subtitle tracks").WithContext("id", id)
	}

	tracks := make([]*subtitle.Track, len(media.Tracks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, tf := range media.Tracks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			track, err := loadTrack(tf)
			if err != nil {
				return err
			}
			tracks[i] = track
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("Loaded %d subtitle tracks for %s", len(tracks), id)

	s.mu.Lock()
	if s.version == version {
		s.tracks[id] = &trackCache{version: version, loaded: time.Now(), tracks: tracks}
	}
	s.mu.Unlock()

	return tracks, nil
}

func loadTrack(tf TrackFile) (*subtitle.Track, error) {
	track, err := subtitle.ReadFile(tf.Path)
	if err != nil {
		if _, statErr := os.Stat(tf.Path); statErr != nil {
			return nil, NewErrorWithCause(ErrRead, "failed to read subtitle file", err).WithContext("path", tf.Path)
		}
		return nil, NewErrorWithCause(ErrParse, "failed to parse subtitle file", err).WithContext("path", tf.Path)
	}
	if tf.Language != "" {
		if tag, err := language.Parse(tf.Language); err == nil {
			track.SetLanguage(tag)
		}
	}
	return track, nil
}

func (s *Scanner) scan(ctx context.Context) ([]Media, error) {
	if _, err := os.Stat(s.root); err != nil {
		if os.IsNotExist(err) {
			return nil, NewErrorWithCause(ErrNotFound, "media directory does not exist", err).WithContext("root", s.root)
		}
		return nil, NewErrorWithCause(ErrRead, "failed to stat media directory", err)
	}

	paths, err := file.FindMatching(s.root, func(p string) bool {
		return file.HasExt(p, videoExts...) || subtitle.IsSubtitleFile(p)
	})
	if err != nil {
		return nil, NewErrorWithCause(ErrRead, "failed to scan media directory", err)
	}

	byID := make(map[string]*Media)
	var subtitles []string
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if subtitle.IsSubtitleFile(p) {
			subtitles = append(subtitles, p)
			continue
		}
		id := s.mediaID(p)
		byID[id] = &Media{
			ID:   id,
			Name: filepath.Base(file.StripExt(p)),
			Path: p,
		}
	}

	for _, p := range subtitles {
		id, lang := s.attach(p, byID)
		m, ok := byID[id]
		if !ok {
			m = &Media{ID: id, Name: filepath.Base(filepath.FromSlash(id))}
			byID[id] = m
		}
		m.Tracks = append(m.Tracks, trackFile(p, lang))
	}

	ret := make([]Media, 0, len(byID))
	for _, m := range byID {
		ret = append(ret, *m)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}

// attach resolves the media id a subtitle file belongs to and the language
// code carried by its name, e.g. "movie.en.srt" -> ("movie", "en").
func (s *Scanner) attach(path string, media map[string]*Media) (id, lang string) {
	stem := s.mediaID(path)
	if _, ok := media[stem]; ok {
		return stem, ""
	}

	base, suffix, ok := file.SplitSuffix(stem)
	if !ok {
		return stem, ""
	}
	tag, err := language.Parse(suffix)
	if err != nil {
		return stem, ""
	}
	return base, tag.String()
}

func (s *Scanner) mediaID(path string) string {
	rel, err := filepath.Rel(s.root, file.StripExt(path))
	if err != nil {
		rel = filepath.Base(file.StripExt(path))
	}
	return filepath.ToSlash(rel)
}

func trackFile(path, lang string) TrackFile {
	tf := TrackFile{Path: path, Language: lang, Label: "Unknown"}
	if format, err := subtitle.FormatFromPath(path); err == nil {
		tf.Format = string(format)
	}
	if lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			tf.Label = subtitle.Label(tag)
		}
	}
	return tf
}

func cloneMedia(in []Media) []Media {
	ret := make([]Media, len(in))
	for i, m := range in {
		ret[i] = m
		ret[i].Tracks = append([]TrackFile(nil), m.Tracks...)
	}
	return ret
}
