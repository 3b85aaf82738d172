package outcome

import (
	"github.com/jb-gy/f1-race-replay/pkg/model"
)

// DriverOutcome is the pre-loaded ground truth for one driver, taken from
// the official session results before the replay starts. It is immutable:
// the detection pass answers *when* something happened, this answers *what*.
type DriverOutcome struct {
	Status         string                   `json:"status"`
	Classification model.ClassificationCode `json:"classification"`
	LapsCompleted  int                      `json:"laps_completed"`
	IsFinished     bool                     `json:"is_finished"`
	IsDNF          bool                     `json:"is_dnf"`
}

// Table maps driver code to outcome. Read-only after construction.
type Table map[string]DriverOutcome

// New normalises a raw outcome map into a Table. The DNF flag is forced to
// agree with the classification code: only R/D/E/W/N count as retirements,
// a lapped finisher keeps its numeric position and is never a DNF here.
func New(raw map[string]DriverOutcome) Table {
	t := make(Table, len(raw))
	for code, o := range raw {
		o.IsDNF = o.Classification.IsRetirement()
		if o.IsDNF {
			o.IsFinished = false
		}
		t[code] = o
	}
	return t
}

// Get returns the outcome for a driver. The second value is false when the
// driver appeared in telemetry but not in the results feed; such drivers
// are never auto-classified by kinematics alone.
func (t Table) Get(code string) (DriverOutcome, bool) {
	o, ok := t[code]
	return o, ok
}

// ScheduledLaps returns the lap count the driver's race consisted of, or 0
// when the driver is unknown.
func (t Table) ScheduledLaps(code string) int {
	return t[code].LapsCompleted
}

// MaxScheduledLaps is the race distance in laps: the largest scheduled lap
// count over the whole field. Lap deficits for lapped finishers are
// computed against this, never against live telemetry lap counters.
func (t Table) MaxScheduledLaps() int {
	max := 0
	for _, o := range t {
		if o.LapsCompleted > max {
			max = o.LapsCompleted
		}
	}
	return max
}

// Drivers returns every driver code present in the table.
func (t Table) Drivers() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	return codes
}
