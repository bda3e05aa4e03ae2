package models

import "time"

type CheckpointState string

const (
	StateRed    CheckpointState = "red"
	StateYellow CheckpointState = "yellow"
	StateGreen  CheckpointState = "green"
)

// Next returns the only state reachable from s.
func (s CheckpointState) Next() CheckpointState {
	switch s {
	case StateRed:
		return StateYellow
	case StateYellow:
		return StateGreen
	default:
		return StateRed
	}
}

// Checkpoint is a traffic-signal-like point derived from a route polyline.
// Its location never changes after derivation; only State does.
type Checkpoint struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Location Location        `json:"location"`
	State    CheckpointState `json:"state"`
}

// LivePosition is the most recent sample reported by the tracked ambulance.
type LivePosition struct {
	Location   Location  `json:"location"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	ETAMinutes *float64  `json:"etaMinutes,omitempty"`
	Speed      string    `json:"speed,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
