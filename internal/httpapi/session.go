package httpapi

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MimeLyc/transcript-panel/internal/cuepoint"
	"github.com/MimeLyc/transcript-panel/internal/hotspot"
	"github.com/MimeLyc/transcript-panel/internal/transcript"
)

// session is one transcript panel. Every controller access goes through mu.
type session struct {
	ID        string
	MediaID   string
	CreatedAt time.Time

	mu          sync.Mutex
	ctrl        *transcript.Controller
	overlay     *hotspot.Overlay
	subscribers map[uint64]func(transcript.Highlight)
	nextSub     uint64
	closed      chan struct{}
	closeOnce   sync.Once
}

func newSession(mediaID string, ctrl *transcript.Controller, overlay *hotspot.Overlay) *session {
	return &session{
		ID:          uuid.NewString(),
		MediaID:     mediaID,
		CreatedAt:   time.Now(),
		ctrl:        ctrl,
		overlay:     overlay,
		subscribers: make(map[uint64]func(transcript.Highlight)),
		closed:      make(chan struct{}),
	}
}

// do runs fn with exclusive access to the controller and pushes the
// returned highlight to the stream subscribers when it changed. Subscribers
// run under the session lock so they see highlights in controller order;
// they must not block.
func (s *session) do(fn func(c *transcript.Controller) (transcript.Highlight, error)) (transcript.Highlight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := fn(s.ctrl)
	if err == nil && (h.Changed || h.Kind == cuepoint.KindSnapshot.String()) {
		for _, sub := range s.subscribers {
			sub(h)
		}
	}
	return h, err
}

// read runs fn with exclusive access to the controller.
func (s *session) read(fn func(c *transcript.Controller)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ctrl)
}

func (s *session) subscribe(fn func(transcript.Highlight)) (current transcript.Highlight, cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return s.ctrl.Highlight(), func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

type sessionResponse struct {
	ID        string              `json:"id"`
	MediaID   string              `json:"media_id"`
	CreatedAt time.Time           `json:"created_at"`
	Tracks    []trackResponse     `json:"tracks"`
	Language  string              `json:"language"`
	Highlight transcript.Highlight `json:"highlight"`
	Search    searchResponse      `json:"search"`
}

func (s *session) response() sessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracks := make([]trackResponse, 0, len(s.ctrl.Tracks()))
	for _, t := range s.ctrl.Tracks() {
		tracks = append(tracks, trackResponse{
			Language: t.LanguageCode(),
			Label:    t.Label,
			Format:   string(t.Format),
			Captions: len(t.Captions),
		})
	}
	return sessionResponse{
		ID:        s.ID,
		MediaID:   s.MediaID,
		CreatedAt: s.CreatedAt,
		Tracks:    tracks,
		Language:  s.ctrl.Track().LanguageCode(),
		Highlight: s.ctrl.Highlight(),
		Search:    newSearchResponse(s.ctrl),
	}
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (st *sessionStore) add(s *session) {
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
}

func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.close()
	}
	return ok
}

func (st *sessionStore) closeAll() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		s.close()
		delete(st.sessions, id)
	}
}

func (st *sessionStore) len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
