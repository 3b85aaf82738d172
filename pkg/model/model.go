package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DriverSample is one driver's telemetry for a single frame of the
// precomputed replay data.
type DriverSample struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Dist     float64 `json:"dist"`
	Lap      int     `json:"lap"`
	RelDist  float64 `json:"rel_dist"`
	Tyre     float64 `json:"tyre"`
	Position int     `json:"position"`
	Speed    float64 `json:"speed"`
	Gear     int     `json:"gear"`
	DRS      int     `json:"drs"`
}

// TelemetryFrame is one tick of the replay: every driver's sample at the
// same instant, keyed by driver code. Lap is the leader's lap.
type TelemetryFrame struct {
	T            float64                 `json:"t"`
	Lap          int                     `json:"lap"`
	Drivers      map[string]DriverSample `json:"drivers"`
	RaceFinished bool                    `json:"race_finished"`
}

// TrackStatus covers safety car / VSC / red flag periods on the session
// timeline. The engine does not interpret these, they are passed through
// to display clients.
type TrackStatus struct {
	Status    string   `json:"status"`
	StartTime float64  `json:"start_time"`
	EndTime   *float64 `json:"end_time"`
}

// ClassificationCode is the official classified position from the results
// feed: a numeric position, or one of the retirement letters.
type ClassificationCode string

const (
	CodeRetired       ClassificationCode = "R"
	CodeDisqualified  ClassificationCode = "D"
	CodeExcluded      ClassificationCode = "E"
	CodeWithdrawn     ClassificationCode = "W"
	CodeNotClassified ClassificationCode = "N"
)

// IsRetirement reports whether the code marks a driver that did not finish.
// Lap-count comparisons are deliberately not part of this: a lapped driver
// still carries a numeric position.
func (c ClassificationCode) IsRetirement() bool {
	switch c {
	case CodeRetired, CodeDisqualified, CodeExcluded, CodeWithdrawn, CodeNotClassified:
		return true
	}
	return false
}

// Position returns the numeric classified position, or 0 when the code is
// not numeric.
func (c ClassificationCode) Position() int {
	p, err := strconv.Atoi(string(c))
	if err != nil {
		return 0
	}
	return p
}

// UnmarshalJSON accepts both the string ("R", "12") and bare-number (12)
// encodings the results feed uses.
func (c *ClassificationCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ClassificationCode(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("classification code %q is neither string nor number", string(data))
	}
	*c = ClassificationCode(strconv.Itoa(n))
	return nil
}

// ClassificationKind is the displayable state of a driver, derived from
// decided events. Priority when deriving, highest first: Retired, then
// Finished, then Racing.
type ClassificationKind int

const (
	Racing ClassificationKind = iota
	FinishedLeadLap
	FinishedLapped
	Retired
)

func (k ClassificationKind) String() string {
	switch k {
	case Retired:
		return "DNF"
	case FinishedLeadLap:
		return "Finished"
	case FinishedLapped:
		return "Lapped"
	default:
		return "Racing"
	}
}

// Classification is one driver's displayable state. LapDeficit is only
// meaningful for FinishedLapped.
type Classification struct {
	Kind       ClassificationKind `json:"kind"`
	LapDeficit int                `json:"lapDeficit,omitempty"`
}

func (c Classification) String() string {
	if c.Kind == FinishedLapped {
		return fmt.Sprintf("+%d lap(s)", c.LapDeficit)
	}
	return c.Kind.String()
}

// StandingsSnapshot is the displayable view of the whole field, rebuilt on
// demand from detector state.
type StandingsSnapshot struct {
	Tick            int                       `json:"tick"`
	RaceComplete    bool                      `json:"raceComplete"`
	Reconciled      bool                      `json:"reconciled"`
	Positions       map[string]int            `json:"positions"`
	Gaps            map[string]float64        `json:"gaps,omitempty"`
	Classifications map[string]Classification `json:"classifications"`
}

// Discrepancy records one driver whose telemetry-derived position did not
// match the authoritative results feed.
type Discrepancy struct {
	Driver            string `json:"driver"`
	TelemetryPosition int    `json:"telemetryPosition"`
	VerifiedPosition  int    `json:"verifiedPosition"`
}

func (d Discrepancy) String() string {
	return fmt.Sprintf("%s: P%d -> P%d (corrected)", d.Driver, d.TelemetryPosition, d.VerifiedPosition)
}
