// Package detector turns the raw distance/lap stream into authoritative
// race events. Raw telemetry alone cannot tell a retired car from one
// crawling behind a safety car, and it does not know how many laps each
// driver's race is; the detector fuses the official outcome feed (who
// retires, who finishes, over how many laps) with per-tick kinematics
// (has the car stopped advancing) to decide each event exactly once.
package detector

import (
	"sort"

	"github.com/jb-gy/f1-race-replay/pkg/model"
	"github.com/jb-gy/f1-race-replay/pkg/outcome"
	"github.com/jb-gy/f1-race-replay/pkg/window"
)

// Config carries the fixed detection thresholds. Tests substitute small
// values; production uses DefaultConfig.
type Config struct {
	// WindowCapacity is the number of consecutive distance samples a
	// retirement-flagged driver must hold before the stationary check
	// can fire.
	WindowCapacity int
	// LeaderWindowCapacity is the (short) window kept for the current
	// race leader, used for the race-completion check.
	LeaderWindowCapacity int
	// DistanceTolerance is the distance delta below which two samples
	// count as "not moving", absorbing GPS jitter around a stopped car.
	DistanceTolerance float64
	// SettlingMargin is how many ticks past race completion the replay
	// waits before trusting standings as final, so trailing per-driver
	// finish evaluations can resolve first.
	SettlingMargin int
}

func DefaultConfig() Config {
	return Config{
		WindowCapacity:       10,
		LeaderWindowCapacity: 2,
		DistanceTolerance:    1.0,
		SettlingMargin:       50,
	}
}

// DriverState is one driver's event state. At most one of DNFDecided and
// FinishDecided ever becomes true, and neither reverts.
type DriverState struct {
	DNFDecided    bool
	FinishDecided bool
	FinishTick    int

	lastLap int
}

const leaderSubject = "__leader__"

// Detector is the per-session state machine. It exclusively owns its
// window store and driver states; callers read them through accessors.
// All methods must be called from the single tick-processing goroutine.
type Detector struct {
	cfg      Config
	outcomes outcome.Table

	windows *window.Store
	leader  *window.Store

	states         map[string]*DriverState
	leaderID       string
	tick           int
	raceComplete   bool
	completionTick int
}

// New builds a detector for one replay session. The state table is sized
// once from the outcome feed; drivers that only ever appear in telemetry
// get window tracking but are never evaluated.
func New(cfg Config, outcomes outcome.Table) *Detector {
	states := make(map[string]*DriverState, len(outcomes))
	for _, code := range outcomes.Drivers() {
		states[code] = &DriverState{}
	}
	return &Detector{
		cfg:      cfg,
		outcomes: outcomes,
		windows:  window.NewStore(cfg.WindowCapacity),
		leader:   window.NewStore(cfg.LeaderWindowCapacity),
		states:   states,
	}
}

// ProcessFrame runs one detection tick. Window updates for every driver in
// the frame happen before any evaluation reads them, so each evaluation
// sees this tick's freshest samples. Returns the tick index processed.
func (d *Detector) ProcessFrame(frame model.TelemetryFrame) int {
	tick := d.tick
	d.tick++

	d.leaderID = frameLeader(frame)

	// Step 1: window updates, all drivers first.
	for code, sample := range frame.Drivers {
		d.windows.Push(code, sample.Dist)
		if st, ok := d.states[code]; ok {
			st.lastLap = sample.Lap
		}
		if code == d.leaderID {
			d.leader.Push(leaderSubject, sample.Dist)
		}
	}

	// Step 2: retirement evaluation. Only outcome-flagged drivers are
	// ever considered, which is what keeps slow corners, pit stops and
	// safety-car crawl from producing false DNFs.
	for code, st := range d.states {
		o, ok := d.outcomes.Get(code)
		if !ok || !o.IsDNF || st.DNFDecided || st.FinishDecided {
			continue
		}
		w := d.windows.Get(code)
		if w != nil && w.Full() && w.Stationary(d.cfg.DistanceTolerance) {
			st.DNFDecided = true
		}
	}

	// Step 3: leader-gated race completion.
	if !d.raceComplete && d.leaderID != "" {
		if st, ok := d.states[d.leaderID]; ok && !st.DNFDecided {
			o, known := d.outcomes.Get(d.leaderID)
			lw := d.leader.Get(leaderSubject)
			if known && st.lastLap >= o.LapsCompleted && lw != nil && lw.Stalled(d.cfg.DistanceTolerance) {
				d.raceComplete = true
				d.completionTick = tick
				if !st.FinishDecided {
					st.FinishDecided = true
					st.FinishTick = tick
				}
			}
		}
	}

	// Step 4: per-driver finish evaluation. Deliberately not gated on
	// race completion: a lapped driver is flagged when *they* cross
	// their own final-lap line, not when the leader does.
	for code, st := range d.states {
		o, ok := d.outcomes.Get(code)
		if !ok || !o.IsFinished || o.IsDNF || st.FinishDecided || st.DNFDecided {
			continue
		}
		w := d.windows.Get(code)
		if st.lastLap >= o.LapsCompleted && w != nil && w.Stalled(d.cfg.DistanceTolerance) {
			st.FinishDecided = true
			st.FinishTick = tick
		}
	}

	return tick
}

// frameLeader picks the driver with the greatest race distance. Resolved
// before the completion check runs, so step 3 never reads a stale leader.
func frameLeader(frame model.TelemetryFrame) string {
	leader := ""
	best := 0.0
	for code, sample := range frame.Drivers {
		if leader == "" || sample.Dist > best {
			leader = code
			best = sample.Dist
		}
	}
	return leader
}

// State returns a copy of the driver's event state.
func (d *Detector) State(code string) (DriverState, bool) {
	st, ok := d.states[code]
	if !ok {
		return DriverState{}, false
	}
	return *st, true
}

// RaceComplete reports whether the leader has finished the race.
func (d *Detector) RaceComplete() bool {
	return d.raceComplete
}

// CompletionTick returns the tick the race was completed on; only
// meaningful once RaceComplete is true.
func (d *Detector) CompletionTick() int {
	return d.completionTick
}

// Tick returns the number of frames processed so far.
func (d *Detector) Tick() int {
	return d.tick
}

// LeaderID returns the current race leader as of the last frame.
func (d *Detector) LeaderID() string {
	return d.leaderID
}

// SettlingDone reports whether the replay has advanced the configured
// margin past the completion tick, i.e. standings can be trusted as final.
func (d *Detector) SettlingDone() bool {
	return d.raceComplete && d.tick >= d.completionTick+d.cfg.SettlingMargin
}

// Unresolved lists drivers whose event state was never decided by the end
// of the stream. They are surfaced as a diagnostic, never coerced into a
// terminal state.
func (d *Detector) Unresolved() []string {
	var codes []string
	for code, st := range d.states {
		if !st.DNFDecided && !st.FinishDecided {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}
