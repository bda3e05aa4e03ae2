package server

import (
	"fmt"
	"net/http"

	"github.com/Rk346278/real-time-ambulance/internal/apperr"
	"github.com/Rk346278/real-time-ambulance/internal/geocode"
	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/tracking"
)

type healthResponse struct {
	Status      string `json:"status"`
	ActiveRoute bool   `json:"activeRoute"`
	Subscribers int    `json:"subscribers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		ActiveRoute: s.deps.Session.Snapshot().Active,
	}
	if s.deps.Hub != nil {
		resp.Subscribers = s.deps.Hub.Len()
	}
	writeJSON(w, http.StatusOK, resp)
}

type routesResponse struct {
	Routes []models.Route `json:"routes"`
}

// handleGetRoute answers /api/get-route?fromLat=&fromLng=&toLat=&toLng= with
// every routing alternative and its derived signals.
func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	var (
		coords [4]float64
		err    error
	)
	for i, name := range []string{"fromLat", "fromLng", "toLat", "toLng"} {
		if coords[i], err = queryFloat(r, name); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	from := models.Location{Lat: coords[0], Lon: coords[1]}
	to := models.Location{Lat: coords[2], Lon: coords[3]}
	routes, err := s.deps.Router.GetRoute(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routesResponse{Routes: routes})
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, r, fmt.Errorf("%w: missing query parameter q", apperr.ErrInvalidInput))
		return
	}
	loc, err := geocode.ResolvePlace(r.Context(), s.deps.Geocoder, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

type startRouteRequest struct {
	// Polyline, when given, is used as is. Otherwise From and To are resolved
	// (coordinates or place names) and routed through OSRM.
	Polyline    models.Polyline `json:"polyline"`
	From        string          `json:"from" validate:"required_without=Polyline"`
	To          string          `json:"to" validate:"required_without=Polyline"`
	Alternative int             `json:"alternative" validate:"gte=0"`
}

func (s *Server) handleStartRoute(w http.ResponseWriter, r *http.Request) {
	var req startRouteRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	polyline := req.Polyline
	if len(polyline) == 0 {
		from, err := geocode.ResolvePlace(r.Context(), s.deps.Geocoder, req.From)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		to, err := geocode.ResolvePlace(r.Context(), s.deps.Geocoder, req.To)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		routes, err := s.deps.Router.GetRoute(r.Context(), from, to)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.Alternative >= len(routes) {
			s.writeError(w, r, fmt.Errorf("%w: alternative %d requested, %d available", apperr.ErrInvalidInput, req.Alternative, len(routes)))
			return
		}
		polyline = routes[req.Alternative].Polyline
	}

	info, err := s.deps.Session.StartRoute(polyline, tracking.RouteMeta{From: req.From, To: req.To})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleStopRoute(w http.ResponseWriter, r *http.Request) {
	s.deps.Session.StopRoute()
	writeJSON(w, http.StatusOK, messageResponse{Message: "Route stopped"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Session.Snapshot())
}

func (s *Server) handleCheckpoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Session.Snapshot().Checkpoints)
}

func (s *Server) handleCheckpoint(w http.ResponseWriter, r *http.Request) {
	cp, err := s.deps.Session.Checkpoint(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

type updateLocationRequest struct {
	Lat        *float64 `json:"lat" validate:"required"`
	Lng        *float64 `json:"lng" validate:"required"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	ETAMinutes *float64 `json:"etaMinutes"`
	Speed      string   `json:"speed"`
}

type updateLocationResponse struct {
	Message     string                `json:"message"`
	Transitions []tracking.Transition `json:"transitions"`
}

func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req updateLocationRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	transitions, err := s.deps.Session.ReportPosition(
		models.Location{Lat: *req.Lat, Lon: *req.Lng},
		tracking.PositionMeta{From: req.From, To: req.To, ETAMinutes: req.ETAMinutes, Speed: req.Speed},
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if transitions == nil {
		transitions = []tracking.Transition{}
	}
	writeJSON(w, http.StatusOK, updateLocationResponse{Message: "Location updated", Transitions: transitions})
}
