package standings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jb-gy/f1-race-replay/pkg/detector"
	"github.com/jb-gy/f1-race-replay/pkg/model"
	"github.com/jb-gy/f1-race-replay/pkg/outcome"
)

func testTable() outcome.Table {
	return outcome.New(map[string]outcome.DriverOutcome{
		"VER": {Status: "Finished", Classification: "1", LapsCompleted: 5, IsFinished: true},
		"HAM": {Status: "+1 Lap", Classification: "2", LapsCompleted: 4, IsFinished: true},
		"STR": {Status: "Collision", Classification: "R", LapsCompleted: 2},
	})
}

func cfg() detector.Config {
	return detector.Config{WindowCapacity: 3, LeaderWindowCapacity: 2, DistanceTolerance: 1.0, SettlingMargin: 2}
}

// runScenario drives the detector until STR is retired and HAM and VER
// have finished.
func runScenario(t *testing.T) *detector.Detector {
	t.Helper()
	det := detector.New(cfg(), testTable())
	for i := 0; i < 4; i++ {
		verDist := 20000.0 + float64(i)*80
		if i >= 2 {
			verDist = 20160
		}
		hamDist := 16000.0
		det.ProcessFrame(model.TelemetryFrame{Drivers: map[string]model.DriverSample{
			"VER": {Lap: 5, Dist: verDist},
			"HAM": {Lap: 4, Dist: hamDist},
			"STR": {Lap: 2, Dist: 3000},
		}})
	}
	return det
}

func TestClassificationPriority(t *testing.T) {
	det := runScenario(t)
	table := testTable()

	str, _ := det.State("STR")
	require.True(t, str.DNFDecided)
	ham, _ := det.State("HAM")
	require.True(t, ham.FinishDecided)
	ver, _ := det.State("VER")
	require.True(t, ver.FinishDecided)

	assert.Equal(t, model.Classification{Kind: model.Retired}, Classify("STR", det, table))
	assert.Equal(t, model.Classification{Kind: model.FinishedLeadLap}, Classify("VER", det, table))
	// Deficit from scheduled laps (5 - 4), never live lap counters.
	assert.Equal(t, model.Classification{Kind: model.FinishedLapped, LapDeficit: 1}, Classify("HAM", det, table))
}

func TestTelemetryOnlyDriverStaysRacing(t *testing.T) {
	det := runScenario(t)
	assert.Equal(t, model.Classification{Kind: model.Racing}, Classify("UNK", det, testTable()))
}

func TestResolveSnapshot(t *testing.T) {
	det := runScenario(t)
	table := testTable()

	snapshot := Resolve(det, table, map[string]int{"VER": 1, "HAM": 2, "STR": 3})
	assert.True(t, snapshot.RaceComplete)
	assert.Equal(t, model.Retired, snapshot.Classifications["STR"].Kind)
	assert.Equal(t, model.FinishedLapped, snapshot.Classifications["HAM"].Kind)
	assert.Equal(t, model.FinishedLeadLap, snapshot.Classifications["VER"].Kind)
	assert.Equal(t, 1, snapshot.Positions["VER"])
}

func TestRenderTableOrdersByPosition(t *testing.T) {
	det := runScenario(t)
	table := testTable()
	snapshot := Resolve(det, table, map[string]int{"VER": 1, "HAM": 2, "STR": 3})
	snapshot.Gaps = map[string]float64{"VER": 0, "HAM": 4160, "STR": 17160}

	out := RenderTable(snapshot, table)
	verIdx := strings.Index(out, "VER")
	hamIdx := strings.Index(out, "HAM")
	strIdx := strings.Index(out, "STR")
	require.NotEqual(t, -1, verIdx)
	assert.Less(t, verIdx, hamIdx)
	assert.Less(t, hamIdx, strIdx)
	assert.Contains(t, out, "DNF")
	assert.Contains(t, out, "+1 lap(s)")
	// Leader shows no gap, everyone else their distance deficit.
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "4160.0m")
}

func TestRenderDiscrepancies(t *testing.T) {
	out := RenderDiscrepancies([]model.Discrepancy{
		{Driver: "HAM", TelemetryPosition: 2, VerifiedPosition: 3},
	})
	assert.Contains(t, out, "HAM")
	assert.Contains(t, out, "P2")
	assert.Contains(t, out, "P3")
}
