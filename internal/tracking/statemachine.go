package tracking

import (
	"time"

	"github.com/Rk346278/real-time-ambulance/internal/models"
)

const (
	CauseApproach = "approach"
	CauseArmed    = "armed"
	CauseDwell    = "dwell_elapsed"
	CauseExit     = "exit"
)

// Transition is one checkpoint state change.
type Transition struct {
	Checkpoint models.Checkpoint     `json:"checkpoint"`
	Previous   models.CheckpointState `json:"previous"`
	Cause      string                 `json:"cause"`
	Distance   *float64               `json:"distance,omitempty"`
}

type scheduled struct {
	seq   uint64
	timer *time.Timer
}

// signalMachine owns checkpoint states and their pending timers. It is not
// safe for concurrent use; the owning Session serializes every call, including
// the timer callbacks routed back through onFire.
type signalMachine struct {
	yellowDelay time.Duration
	greenDwell  time.Duration

	checkpoints []models.Checkpoint
	index       map[string]int
	timers      map[string]*scheduled
	seq         uint64

	onFire func(id string, seq uint64)
}

func newSignalMachine(yellowDelay, greenDwell time.Duration, onFire func(id string, seq uint64)) *signalMachine {
	return &signalMachine{
		yellowDelay: yellowDelay,
		greenDwell:  greenDwell,
		index:       make(map[string]int),
		timers:      make(map[string]*scheduled),
		onFire:      onFire,
	}
}

// load replaces the checkpoint set. Pending timers must already be stopped.
func (m *signalMachine) load(checkpoints []models.Checkpoint) {
	m.checkpoints = checkpoints
	m.index = make(map[string]int, len(checkpoints))
	for i, cp := range checkpoints {
		m.index[cp.ID] = i
	}
}

func (m *signalMachine) lookup(id string) *models.Checkpoint {
	i, ok := m.index[id]
	if !ok {
		return nil
	}
	return &m.checkpoints[i]
}

// approach moves a RED checkpoint to YELLOW and schedules it to turn GREEN.
func (m *signalMachine) approach(id string) (Transition, bool) {
	cp := m.lookup(id)
	if cp == nil || cp.State != models.StateRed {
		return Transition{}, false
	}
	if _, busy := m.timers[id]; busy {
		return Transition{}, false
	}

	cp.State = models.StateYellow
	m.schedule(id, m.yellowDelay)
	return Transition{Checkpoint: *cp, Previous: models.StateRed, Cause: CauseApproach}, true
}

// exit forces a GREEN checkpoint back to RED and drops its dwell timer.
func (m *signalMachine) exit(id string) (Transition, bool) {
	cp := m.lookup(id)
	if cp == nil || cp.State != models.StateGreen {
		return Transition{}, false
	}

	m.cancel(id)
	cp.State = models.StateRed
	return Transition{Checkpoint: *cp, Previous: models.StateGreen, Cause: CauseExit}, true
}

// fire applies the transition owed to a timer. Stale timers, whose entry was
// cancelled or replaced since they were armed, are ignored.
func (m *signalMachine) fire(id string, seq uint64) (Transition, bool) {
	entry, ok := m.timers[id]
	if !ok || entry.seq != seq {
		return Transition{}, false
	}
	delete(m.timers, id)

	cp := m.lookup(id)
	if cp == nil {
		return Transition{}, false
	}

	switch cp.State {
	case models.StateYellow:
		cp.State = models.StateGreen
		m.schedule(id, m.greenDwell)
		return Transition{Checkpoint: *cp, Previous: models.StateYellow, Cause: CauseArmed}, true
	case models.StateGreen:
		cp.State = models.StateRed
		return Transition{Checkpoint: *cp, Previous: models.StateGreen, Cause: CauseDwell}, true
	}
	return Transition{}, false
}

// stopAll cancels every pending timer.
func (m *signalMachine) stopAll() {
	for id := range m.timers {
		m.cancel(id)
	}
}

func (m *signalMachine) pending() int { return len(m.timers) }

func (m *signalMachine) schedule(id string, d time.Duration) {
	if _, busy := m.timers[id]; busy {
		return
	}
	m.seq++
	seq := m.seq
	m.timers[id] = &scheduled{
		seq:   seq,
		timer: time.AfterFunc(d, func() { m.onFire(id, seq) }),
	}
}

func (m *signalMachine) cancel(id string) {
	if entry, ok := m.timers[id]; ok {
		entry.timer.Stop()
		delete(m.timers, id)
	}
}

func (m *signalMachine) snapshot() []models.Checkpoint {
	out := make([]models.Checkpoint, len(m.checkpoints))
	copy(out, m.checkpoints)
	return out
}
