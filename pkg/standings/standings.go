// Package standings derives the displayable classification of the field
// from detector state. It is a pure read: nothing here mutates event
// state, and the classification priority is a hard ordering, so a driver
// can never display as both retired and finished.
package standings

import (
	"github.com/jb-gy/f1-race-replay/pkg/detector"
	"github.com/jb-gy/f1-race-replay/pkg/model"
	"github.com/jb-gy/f1-race-replay/pkg/outcome"
)

// Classify resolves one driver. Priority, highest first: a decided DNF
// beats everything; a decided finish is lead-lap or lapped depending on
// scheduled lap counts; anything else is still racing. The lap deficit
// uses scheduled laps from the outcome table, never live lap counters,
// which can transiently disagree around the line.
func Classify(code string, det *detector.Detector, table outcome.Table) model.Classification {
	st, ok := det.State(code)
	if !ok {
		// Driver seen only in telemetry: no authoritative info, so no
		// terminal state can ever be assigned.
		return model.Classification{Kind: model.Racing}
	}
	switch {
	case st.DNFDecided:
		return model.Classification{Kind: model.Retired}
	case st.FinishDecided:
		deficit := table.MaxScheduledLaps() - table.ScheduledLaps(code)
		if deficit > 0 {
			return model.Classification{Kind: model.FinishedLapped, LapDeficit: deficit}
		}
		return model.Classification{Kind: model.FinishedLeadLap}
	default:
		return model.Classification{Kind: model.Racing}
	}
}

// Resolve builds the full snapshot for the drivers currently holding a
// telemetry position. Rebuilt on demand, never persisted.
func Resolve(det *detector.Detector, table outcome.Table, positions map[string]int) model.StandingsSnapshot {
	classifications := make(map[string]model.Classification, len(positions))
	for code := range positions {
		classifications[code] = Classify(code, det, table)
	}
	return model.StandingsSnapshot{
		Tick:            det.Tick(),
		RaceComplete:    det.RaceComplete(),
		Positions:       positions,
		Classifications: classifications,
	}
}
