package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Rk346278/real-time-ambulance/internal/broadcast"
	"github.com/lucsky/cuid"
)

const eventSnapshot = "snapshot"

// handleEvents streams hub events as server-sent events. The first event is a
// snapshot of the session so a fresh dashboard can render immediately.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Hub == nil {
		http.Error(w, "event stream disabled", http.StatusServiceUnavailable)
		return
	}
	rc := http.NewResponseController(w)

	sub := s.deps.Hub.Subscribe("sse:"+r.RemoteAddr, s.deps.SubscriberBuffer)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snapshot := broadcast.Event{ID: cuid.New(), Kind: eventSnapshot, Payload: s.deps.Session.Snapshot()}
	if err := writeEvent(w, rc, snapshot); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := writeEvent(w, rc, event); err != nil {
				s.logger.Debug("event stream closed", "observer", sub.Name(), "err", err)
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, event broadcast.Event) error {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Kind, data); err != nil {
		return err
	}
	return rc.Flush()
}
