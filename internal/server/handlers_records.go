package server

import (
	"net/http"
	"time"

	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/repositories"
	"github.com/Rk346278/real-time-ambulance/internal/triage"
	"github.com/lucsky/cuid"
)

func (s *Server) publish(kind string, payload any) {
	if s.deps.Hub != nil {
		s.deps.Hub.Publish(kind, payload)
	}
}

func (s *Server) handleListDriverUpdates(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updates, err := s.deps.Drivers.ListRecent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updates)
}

type driverUpdateRequest struct {
	FromLocation string `json:"fromLocation" validate:"required"`
	ToLocation   string `json:"toLocation" validate:"required"`
}

func (s *Server) handleCreateDriverUpdate(w http.ResponseWriter, r *http.Request) {
	var req driverUpdateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	saved := &models.DriverUpdate{
		ID:           cuid.New(),
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.deps.Drivers.Create(r.Context(), saved); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(models.EventDriverUpdate, saved)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Driver update saved", Data: saved})
}

func (s *Server) handleListNurseUpdates(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updates, err := s.deps.Nurses.ListRecent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updates)
}

type nurseUpdateRequest struct {
	PatientName string `json:"patientName" validate:"required"`
	Age         int    `json:"age" validate:"gte=0,lte=150"`
	Notes       string `json:"notes"`
}

// handleCreateNurseUpdate stores a patient record with its triage fields
// computed from the notes; any client-sent triage values are ignored.
func (s *Server) handleCreateNurseUpdate(w http.ResponseWriter, r *http.Request) {
	var req nurseUpdateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	saved := &models.NurseUpdate{
		ID:          cuid.New(),
		PatientName: req.PatientName,
		Age:         req.Age,
		Notes:       req.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	triage.Apply(saved)

	if err := s.deps.Nurses.Create(r.Context(), saved); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(models.EventNurseUpdate, saved)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Nurse update saved", Data: saved})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := repositories.ClearAll(r.Context(), s.deps.Drivers, s.deps.Nurses); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(models.EventRecordsCleared, struct{}{})
	writeJSON(w, http.StatusOK, messageResponse{Message: "All data cleared successfully."})
}
