package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MimeLyc/transcript-panel/internal/transcript"
	"github.com/MimeLyc/transcript-panel/pkg/debounce"
)

// handleStream pushes the session highlight as server-sent events. Bursts
// of time updates are collapsed into the latest highlight.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := make(chan transcript.Highlight, 1)
	deb := debounce.New(s.streamDebounce, func(h transcript.Highlight) {
		latest(updates, h)
	})
	defer deb.Stop()

	current, cancel := sess.subscribe(deb.Call)
	defer cancel()

	send := func(h transcript.Highlight) bool {
		payload, err := json.Marshal(h)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "event: highlight\ndata: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(current) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sess.closed:
			// deliver the highlight still waiting for its quiet period
			deb.Flush()
			select {
			case h := <-updates:
				send(h)
			default:
			}
			return
		case h := <-updates:
			if !send(h) {
				return
			}
		}
	}
}

// latest replaces whatever is buffered in ch with h.
func latest(ch chan transcript.Highlight, h transcript.Highlight) {
	for {
		select {
		case ch <- h:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
