// Package tracking follows one ambulance along its route and drives the
// signal checkpoints it passes.
//
// A Session owns the live position, the checkpoint set and the pending signal
// timers. Position reports and timer callbacks all take the session lock, so a
// timer firing while a sample is being evaluated cannot race on a checkpoint.
// Events are handed to the publisher while the lock is held; the hub never
// blocks, so each observer sees events in exactly the order they happened.
package tracking

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Rk346278/real-time-ambulance/internal/apperr"
	"github.com/Rk346278/real-time-ambulance/internal/broadcast"
	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/route"
	"github.com/lucsky/cuid"
)

type Options struct {
	Deriver     route.Deriver
	Threshold   Threshold
	YellowDelay time.Duration
	GreenDwell  time.Duration
	Publisher   broadcast.Publisher
	Logger      *slog.Logger
}

// RouteMeta labels a route for dashboards.
type RouteMeta struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// PositionMeta is optional data sent along with a position sample. Empty
// From/To fall back to the active route's labels.
type PositionMeta struct {
	From       string
	To         string
	ETAMinutes *float64
	Speed      string
}

// RouteInfo is the payload of route_started and route_stopped.
type RouteInfo struct {
	RouteID     string              `json:"routeId"`
	From        string              `json:"from,omitempty"`
	To          string              `json:"to,omitempty"`
	Checkpoints []models.Checkpoint `json:"signals"`
	StartedAt   time.Time           `json:"startedAt"`
}

// SignalApproach is the payload of signal_approach, sent once per RED→YELLOW.
type SignalApproach struct {
	Signal   string  `json:"signal"`
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Distance float64 `json:"distance"`
}

// SignalStateChange is the payload of signal_state.
type SignalStateChange struct {
	RouteID string `json:"routeId"`
	Transition
}

type Snapshot struct {
	Active      bool                 `json:"active"`
	Route       *RouteInfo           `json:"route,omitempty"`
	Position    *models.LivePosition `json:"position,omitempty"`
	Checkpoints []models.Checkpoint  `json:"signals"`
}

type Session struct {
	mu sync.Mutex

	deriver   route.Deriver
	threshold Threshold
	publisher broadcast.Publisher
	logger    *slog.Logger

	machine  *signalMachine
	route    *RouteInfo
	position *models.LivePosition
}

func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Deriver == nil {
		opts.Deriver = route.AngleDeriver{ThresholdDeg: 35}
	}
	s := &Session{
		deriver:   opts.Deriver,
		threshold: opts.Threshold,
		publisher: opts.Publisher,
		logger:    opts.Logger,
	}
	s.machine = newSignalMachine(opts.YellowDelay, opts.GreenDwell, s.onTimer)
	return s
}

// StartRoute replaces any active route with polyline, derives its checkpoints
// and clears the live position.
func (s *Session) StartRoute(polyline models.Polyline, meta RouteMeta) (RouteInfo, error) {
	if err := polyline.Validate(); err != nil {
		return RouteInfo{}, fmt.Errorf("start route: %w: %v", apperr.ErrInvalidInput, err)
	}
	checkpoints := s.deriver.Derive(polyline)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route != nil {
		s.stopLocked()
	}

	s.machine.load(checkpoints)
	s.position = nil
	s.route = &RouteInfo{
		RouteID:   cuid.New(),
		From:      meta.From,
		To:        meta.To,
		StartedAt: time.Now().UTC(),
	}

	info := *s.route
	info.Checkpoints = s.machine.snapshot()
	s.publish(models.EventRouteStarted, info)
	s.logger.Info("route started", "route", info.RouteID, "points", len(polyline), "signals", len(checkpoints))
	return info, nil
}

// StopRoute cancels every pending signal timer and discards the checkpoints.
// It is a no-op without an active route.
func (s *Session) StopRoute() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route == nil {
		return
	}
	s.stopLocked()
}

func (s *Session) stopLocked() {
	s.machine.stopAll()
	s.machine.load(nil)

	info := *s.route
	info.Checkpoints = []models.Checkpoint{}
	s.route = nil
	s.position = nil

	s.publish(models.EventRouteStopped, info)
	s.logger.Info("route stopped", "route", info.RouteID)
}

// ReportPosition records a new sample and applies any checkpoint transitions it
// causes. The position is broadcast even without an active route.
func (s *Session) ReportPosition(loc models.Location, meta PositionMeta) ([]Transition, error) {
	if !loc.IsFinite() {
		return nil, fmt.Errorf("report position: %w: coordinate is not finite", apperr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := models.LivePosition{
		Location:   loc,
		From:       meta.From,
		To:         meta.To,
		ETAMinutes: meta.ETAMinutes,
		Speed:      meta.Speed,
		UpdatedAt:  time.Now().UTC(),
	}
	if s.route != nil {
		if pos.From == "" {
			pos.From = s.route.From
		}
		if pos.To == "" {
			pos.To = s.route.To
		}
	}
	s.position = &pos
	s.publish(models.EventAmbulanceUpdate, pos)

	var transitions []Transition
	for _, c := range Evaluate(loc, s.machine.checkpoints, s.threshold) {
		var (
			tr Transition
			ok bool
		)
		switch c.Kind {
		case CrossingEnter:
			tr, ok = s.machine.approach(c.ID)
		case CrossingExit:
			tr, ok = s.machine.exit(c.ID)
		}
		if !ok {
			continue
		}
		distance := c.Distance
		tr.Distance = &distance
		transitions = append(transitions, tr)
		s.emit(tr)
	}
	return transitions, nil
}

func (s *Session) onTimer(id string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.machine.fire(id, seq)
	if !ok {
		return
	}
	s.emit(tr)
}

func (s *Session) emit(tr Transition) {
	routeID := ""
	if s.route != nil {
		routeID = s.route.RouteID
	}
	s.publish(models.EventSignalState, SignalStateChange{RouteID: routeID, Transition: tr})

	if tr.Cause == CauseApproach {
		approach := SignalApproach{
			Signal: tr.Checkpoint.Name,
			ID:     tr.Checkpoint.ID,
			Status: "turn_green",
			Lat:    tr.Checkpoint.Location.Lat,
			Lng:    tr.Checkpoint.Location.Lon,
		}
		if tr.Distance != nil {
			approach.Distance = *tr.Distance
		}
		s.publish(models.EventSignalApproach, approach)
	}

	s.logger.Debug("signal transition",
		"signal", tr.Checkpoint.ID,
		"from", tr.Previous,
		"to", tr.Checkpoint.State,
		"cause", tr.Cause,
	)
}

func (s *Session) publish(kind string, payload any) {
	if s.publisher != nil {
		s.publisher.Publish(kind, payload)
	}
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Active:      s.route != nil,
		Checkpoints: s.machine.snapshot(),
	}
	if s.route != nil {
		info := *s.route
		info.Checkpoints = snap.Checkpoints
		snap.Route = &info
	}
	if s.position != nil {
		pos := *s.position
		snap.Position = &pos
	}
	return snap
}

// Checkpoint returns a copy of one checkpoint by id.
func (s *Session) Checkpoint(id string) (models.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.machine.lookup(id)
	if cp == nil {
		return models.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", id, apperr.ErrNotFound)
	}
	return *cp, nil
}

// PendingTimers reports how many signal timers are outstanding.
func (s *Session) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.pending()
}
