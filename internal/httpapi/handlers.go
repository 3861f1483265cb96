package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MimeLyc/transcript-panel/internal/hotspot"
	"github.com/MimeLyc/transcript-panel/internal/library"
	"github.com/MimeLyc/transcript-panel/internal/search"
	"github.com/MimeLyc/transcript-panel/internal/subtitle"
	"github.com/MimeLyc/transcript-panel/internal/transcript"
	"github.com/MimeLyc/transcript-panel/pkg/icron"
	"github.com/MimeLyc/transcript-panel/pkg/log"
)

type trackResponse struct {
	Language string `json:"language"`
	Label    string `json:"label"`
	Format   string `json:"format"`
	Captions int    `json:"captions"`
}

type searchResponse struct {
	Query       string                 `json:"query"`
	Searching   bool                   `json:"searching"`
	Total       int                    `json:"total"`
	Active      int                    `json:"active"`
	MatchLength int                    `json:"match_length"`
	Matches     map[string]map[int]int `json:"matches"`
	Current     *transcript.Match      `json:"current,omitempty"`
}

func newSearchResponse(c *transcript.Controller) searchResponse {
	idx := c.SearchIndex()
	ret := searchResponse{
		Query:       idx.Query,
		Searching:   idx.IsActive(),
		Total:       idx.Total,
		Active:      idx.Active,
		MatchLength: idx.MatchLength,
		Matches:     idx.Matches,
	}
	if m, ok := c.CurrentMatch(); ok {
		ret.Current = &m
	}
	return ret
}

type captionResponse struct {
	ID        string      `json:"id"`
	StartTime float64     `json:"start_time"`
	EndTime   *float64    `json:"end_time,omitempty"`
	Text      string      `json:"text"`
	Matches   map[int]int `json:"matches,omitempty"`
}

// newCaptionResponses renders captions with the search matches that fall
// inside each of them.
func newCaptionResponses(captions []*subtitle.Caption, idx search.Index) []captionResponse {
	ret := make([]captionResponse, 0, len(captions))
	for _, c := range captions {
		item := captionResponse{ID: c.ID, StartTime: c.StartTime, Text: c.Text, Matches: idx.ItemMatches(c.ID)}
		if end, ok := c.CueEnd(); ok {
			item.EndTime = &end
		}
		ret = append(ret, item)
	}
	return ret
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ret := map[string]any{
		"ok":       true,
		"sessions": s.sessions.len(),
	}
	if s.rescanCron != "" {
		if info, err := icron.GetTriggerInfo(s.rescanCron, time.Now()); err == nil {
			ret["rescan"] = info
		}
	}
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	media, err := s.scanner.List(r.Context())
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, media)
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	media, err := s.scanner.Media(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, media)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	s.scanner.Invalidate()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"ok": true,
	})
}

func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	if s.hotspots == nil {
		writeError(w, http.StatusNotFound, "hotspots are not configured")
		return
	}

	raw := r.URL.Query().Get("t")
	if raw == "" {
		writeJSON(w, http.StatusOK, nonNil(s.hotspots.Hotspots()))
		return
	}
	t, err := parseTime(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNil(s.hotspots.At(t)))
}

func nonNil(hotspots []*hotspot.Hotspot) []*hotspot.Hotspot {
	if hotspots == nil {
		return []*hotspot.Hotspot{}
	}
	return hotspots
}

type createSessionRequest struct {
	MediaID  string `json:"media_id"`
	Language string `json:"language"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.MediaID) == "" {
		writeError(w, http.StatusBadRequest, "media_id is required")
		return
	}

	tracks, err := s.scanner.LoadTracks(r.Context(), req.MediaID)
	if err != nil {
		writeLibraryError(w, err)
		return
	}

	opts := append([]transcript.Option(nil), s.controllerOpts...)
	lang := req.Language
	if lang == "" {
		lang = s.language
	}
	if lang != "" {
		opts = append(opts, transcript.WithLanguage(lang))
	}

	ctrl, err := transcript.NewController(tracks, opts...)
	if err != nil && req.Language == "" && errors.Is(err, transcript.ErrTrackNotFound) {
		// the server default is only a preference
		ctrl, err = transcript.NewController(tracks, s.controllerOpts...)
	}
	if err != nil {
		writeTranscriptError(w, err)
		return
	}

	var overlay *hotspot.Overlay
	if s.hotspots != nil {
		overlay = s.hotspots.Fork()
	}
	sess := newSession(req.MediaID, ctrl, overlay)
	s.sessions.add(sess)
	log.Info("Created session %s for %s (%s)", sess.ID, req.MediaID, ctrl.Track().LanguageCode())

	writeJSON(w, http.StatusCreated, sess.response())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.response())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.remove(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type timeRequest struct {
	Time  *float64 `json:"time"`
	Force bool     `json:"force"`
}

// timeResponse is the caption highlight plus, when hotspots are configured,
// the hotspots visible at the same time.
type timeResponse struct {
	transcript.Highlight
	Hotspots        []*hotspot.Hotspot `json:"hotspots,omitempty"`
	HotspotsChanged bool               `json:"hotspots_changed,omitempty"`
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req timeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Time == nil {
		writeError(w, http.StatusBadRequest, "time is required")
		return
	}

	h, _ := sess.do(func(c *transcript.Controller) (transcript.Highlight, error) {
		if req.Force {
			return c.Seek(*req.Time), nil
		}
		return c.OnTimeUpdate(*req.Time), nil
	})

	ret := timeResponse{Highlight: h}
	if sess.overlay != nil {
		visible, changed := sess.overlay.Update(*req.Time, req.Force)
		ret.Hotspots = nonNil(visible)
		ret.HotspotsChanged = changed
	}
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) handleSessionHotspots(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if sess.overlay == nil {
		writeError(w, http.StatusNotFound, "hotspots are not configured")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sess.overlay.Visible()))
}

type trackRequest struct {
	Language string `json:"language"`
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Language == "" {
		writeError(w, http.StatusBadRequest, "language is required")
		return
	}

	h, err := sess.do(func(c *transcript.Controller) (transcript.Highlight, error) {
		return c.SelectTrack(req.Language)
	})
	if err != nil {
		writeTranscriptError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleCaptions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("t")
	var ret []captionResponse
	if raw == "" {
		sess.read(func(c *transcript.Controller) {
			ret = newCaptionResponses(c.Track().Captions, c.SearchIndex())
		})
		writeJSON(w, http.StatusOK, ret)
		return
	}

	t, err := parseTime(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.read(func(c *transcript.Controller) {
		ret = newCaptionResponses(c.CaptionsAt(t), c.SearchIndex())
	})
	writeJSON(w, http.StatusOK, ret)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var ret searchResponse
	sess.read(func(c *transcript.Controller) {
		c.Search(req.Query)
		ret = newSearchResponse(c)
	})
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) handleSearchStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	direction, ok := search.ParseDirection(path.Base(r.URL.Path))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown direction")
		return
	}

	var ret searchResponse
	sess.read(func(c *transcript.Controller) {
		if direction == search.Prev {
			c.PrevMatch()
		} else {
			c.NextMatch()
		}
		ret = newSearchResponse(c)
	})
	writeJSON(w, http.StatusOK, ret)
}

func parseTime(raw string) (float64, error) {
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, errors.New("t must be a finite number of seconds")
	}
	return t, nil
}

func writeLibraryError(w http.ResponseWriter, err error) {
	switch {
	case library.IsErrorType(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case library.IsErrorType(err, library.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case library.IsErrorType(err, library.ErrParse):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeTranscriptError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transcript.ErrTrackNotFound), errors.Is(err, transcript.ErrNoTracks):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
