package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rk346278/real-time-ambulance/internal/apperr"
	"github.com/Rk346278/real-time-ambulance/internal/broadcast"
	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/repositories/memory"
	"github.com/Rk346278/real-time-ambulance/internal/route"
	"github.com/Rk346278/real-time-ambulance/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rightAngle = models.Polyline{
	{Lat: 0, Lon: 0},
	{Lat: 0, Lon: 0.001},
	{Lat: 0.001, Lon: 0.001},
}

type fakeRouter struct {
	routes []models.Route
	err    error
	calls  int
}

func (f *fakeRouter) GetRoute(_ context.Context, from, to models.Location) ([]models.Route, error) {
	f.calls++
	return f.routes, f.err
}

type fixture struct {
	srv     *Server
	session *tracking.Session
	hub     *broadcast.Hub
	router  *fakeRouter
	nurses  *memory.NurseUpdateRepository
}

func newFixture(t *testing.T) *fixture {
	hub := broadcast.NewHub(nil)
	t.Cleanup(hub.Close)
	session := tracking.NewSession(tracking.Options{
		Deriver:     route.AngleDeriver{ThresholdDeg: 35},
		Threshold:   tracking.Threshold{Metric: models.ProximityHaversine, Distance: 200},
		YellowDelay: time.Hour,
		GreenDwell:  time.Hour,
		Publisher:   hub,
	})
	t.Cleanup(session.StopRoute)

	router := &fakeRouter{routes: []models.Route{{
		Polyline:    rightAngle,
		Checkpoints: route.AngleDeriver{ThresholdDeg: 35}.Derive(rightAngle),
	}}}
	nurses := memory.NewNurseUpdateRepository()
	srv := New(models.ServerConfig{Port: 0}, Deps{
		Session: session,
		Hub:     hub,
		Router:  router,
		Drivers: memory.NewDriverUpdateRepository(),
		Nurses:  nurses,
	})
	return &fixture{srv: srv, session: session, hub: hub, router: router, nurses: nurses}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "ok", decodeBody[healthResponse](t, rec).Status)
}

func TestGetRoute(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/get-route?fromLat=12.97&fromLng=77.59&toLat=12.99&toLng=77.61", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[routesResponse](t, rec)
	require.Len(t, resp.Routes, 1)
	assert.Len(t, resp.Routes[0].Checkpoints, 1)

	rec = f.do(t, http.MethodGet, "/api/get-route?fromLat=12.97&fromLng=77.59&toLat=abc&toLng=77.61", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorResponse](t, rec).Error, "toLat")

	f.router.err = fmt.Errorf("get route: %w: timeout", apperr.ErrProviderUnavailable)
	rec = f.do(t, http.MethodGet, "/api/get-route?fromLat=1&fromLng=1&toLat=2&toLng=2", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestStartRoute_WithPolyline(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/route/start",
		`{"polyline":[{"lat":0,"lng":0},{"lat":0,"lng":0.001},{"lat":0.001,"lng":0.001}],"from":"Depot","to":"City General"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	info := decodeBody[tracking.RouteInfo](t, rec)
	require.Len(t, info.Checkpoints, 1)
	assert.Equal(t, models.StateRed, info.Checkpoints[0].State)
	assert.Equal(t, "City General", info.To)
	assert.Zero(t, f.router.calls)

	rec = f.do(t, http.MethodGet, "/api/checkpoints", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.Checkpoint](t, rec), 1)
}

func TestStartRoute_ResolvesThroughRouter(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/route/start", `{"from":"12.97,77.59","to":"12.99,77.61"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, f.router.calls)
	assert.True(t, f.session.Snapshot().Active)

	rec = f.do(t, http.MethodPost, "/api/route/start", `{"from":"12.97,77.59","to":"12.99,77.61","alternative":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartRoute_Rejects(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "single point", body: `{"polyline":[{"lat":0,"lng":0}]}`, status: http.StatusBadRequest},
		{name: "nothing to route", body: `{}`, status: http.StatusBadRequest},
		{name: "malformed", body: `{"polyline":`, status: http.StatusBadRequest},
		{name: "place without geocoder", body: `{"from":"City Hospital","to":"12.99,77.61"}`, status: http.StatusBadGateway},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/route/start", test.body)
			assert.Equal(t, test.status, rec.Code, rec.Body.String())
		})
	}
	assert.False(t, f.session.Snapshot().Active)
}

func TestUpdateLocation(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.StartRoute(rightAngle, tracking.RouteMeta{})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/update-location", `{"lat":0,"lng":0.0009,"etaMinutes":4.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[updateLocationResponse](t, rec)
	assert.Equal(t, "Location updated", resp.Message)
	require.Len(t, resp.Transitions, 1)
	assert.Equal(t, models.StateYellow, resp.Transitions[0].Checkpoint.State)

	rec = f.do(t, http.MethodGet, "/api/checkpoints/"+resp.Transitions[0].Checkpoint.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StateYellow, decodeBody[models.Checkpoint](t, rec).State)

	rec = f.do(t, http.MethodPost, "/update-location", `{"lng":0.0009}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckpointNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/checkpoints/cp-9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStopRoute(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.StartRoute(rightAngle, tracking.RouteMeta{})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/route/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.session.Snapshot().Active)
}

func TestDriverUpdates(t *testing.T) {
	f := newFixture(t)
	sub := f.hub.Subscribe("test", 8)

	rec := f.do(t, http.MethodPost, "/api/driver-updates", `{"fromLocation":"Depot","toLocation":"City General"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	select {
	case event := <-sub.Events():
		assert.Equal(t, models.EventDriverUpdate, event.Kind)
	case <-time.After(time.Second):
		t.Fatal("no broadcast")
	}

	rec = f.do(t, http.MethodGet, "/api/driver-updates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]models.DriverUpdate](t, rec)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)

	rec = f.do(t, http.MethodPost, "/api/driver-updates", `{"fromLocation":"Depot"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/driver-updates?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNurseUpdates(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/nurse-updates",
		`{"patientName":"A. Rao","age":64,"notes":"patient not breathing, no pulse","severityScore":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	type saved struct {
		Data models.NurseUpdate `json:"data"`
	}
	got := decodeBody[saved](t, rec).Data
	assert.Equal(t, 95, got.SeverityScore)
	assert.Equal(t, models.ConditionCritical, got.ConditionSeverity)
	assert.Equal(t, "Oxygen Support & ICU Ready", got.ImmediateRequirement)

	rec = f.do(t, http.MethodPost, "/api/nurse-updates", `{"patientName":"B. Das","age":30,"notes":"mild headache"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/nurse-updates", "")
	list := decodeBody[[]models.NurseUpdate](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "A. Rao", list[0].PatientName)

	rec = f.do(t, http.MethodPost, "/api/nurse-updates", `{"patientName":"C","age":400}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearAll(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/nurse-updates", `{"patientName":"A. Rao","age":64,"notes":"fever"}`)
	f.do(t, http.MethodPost, "/api/driver-updates", `{"fromLocation":"Depot","toLocation":"City"}`)

	rec := f.do(t, http.MethodDelete, "/api/clear-all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "All data cleared successfully.", decodeBody[messageResponse](t, rec).Message)

	n, err := f.nurses.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "[]\n", f.do(t, http.MethodGet, "/api/driver-updates", "").Body.String())
}

func TestGeocode_CoordinatesWithoutProvider(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/geocode?q=12.5,77.25", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Location{Lat: 12.5, Lon: 77.25}, decodeBody[models.Location](t, rec))

	rec = f.do(t, http.MethodGet, "/api/geocode", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvents_StreamsSnapshotThenEvents(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	nextEvent := func() string {
		for lines.Scan() {
			if name, ok := strings.CutPrefix(lines.Text(), "event: "); ok {
				return name
			}
		}
		return ""
	}

	require.Equal(t, eventSnapshot, nextEvent())
	require.Eventually(t, func() bool { return f.hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	_, err = f.session.StartRoute(rightAngle, tracking.RouteMeta{})
	require.NoError(t, err)
	_, err = f.session.ReportPosition(models.Location{Lat: 0, Lon: 0.0009}, tracking.PositionMeta{})
	require.NoError(t, err)

	assert.Equal(t, models.EventRouteStarted, nextEvent())
	assert.Equal(t, models.EventAmbulanceUpdate, nextEvent())
	assert.Equal(t, models.EventSignalState, nextEvent())
	assert.Equal(t, models.EventSignalApproach, nextEvent())
}

func TestOptionsPreflight(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodOptions, "/api/nurse-updates", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
