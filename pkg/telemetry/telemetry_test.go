package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportedData = `{
	"frames": [
		{
			"t": 0.0,
			"lap": 1,
			"race_finished": false,
			"drivers": {
				"VER": {"x": 1.0, "y": 2.0, "dist": 120.5, "lap": 1, "rel_dist": 0.02, "tyre": 2.0, "position": 1, "speed": 280.0, "gear": 7, "drs": 1},
				"HAM": {"x": 0.5, "y": 1.0, "dist": 110.0, "lap": 1, "rel_dist": 0.018, "tyre": 1.0, "position": 2, "speed": 275.0, "gear": 7, "drs": 0}
			}
		},
		{
			"t": 0.04,
			"lap": 1,
			"race_finished": false,
			"drivers": {
				"VER": {"dist": 124.0, "lap": 1},
				"HAM": {"dist": 113.2, "lap": 1}
			}
		}
	],
	"driver_colors": {"VER": [30, 65, 255], "HAM": [0, 210, 190]},
	"track_statuses": [{"status": "1", "start_time": 0.0, "end_time": null}],
	"driver_status": {
		"VER": {"status": "Finished", "classification": 1, "laps_completed": 57, "is_finished": true, "is_dnf": false},
		"STR": {"status": "Collision", "classification": "R", "laps_completed": 12, "is_finished": false, "is_dnf": true}
	},
	"driver_finish_frames": {"VER": 1}
}`

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "2024_Bahrain_Grand_Prix_race_telemetry.json")
	require.NoError(t, os.WriteFile(path, []byte(exportedData), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	rd, err := Load(writeExport(t))
	require.NoError(t, err)

	require.Len(t, rd.Frames, 2)
	assert.Equal(t, 120.5, rd.Frames[0].Drivers["VER"].Dist)
	assert.Equal(t, 2, rd.Frames[0].Drivers["HAM"].Position)
	assert.Equal(t, [3]int{30, 65, 255}, rd.DriverColors["VER"])
	require.Len(t, rd.TrackStatuses, 1)
	assert.Nil(t, rd.TrackStatuses[0].EndTime)
	assert.Equal(t, 1, rd.FinishFrames["VER"])
}

func TestOutcomesFromExport(t *testing.T) {
	rd, err := Load(writeExport(t))
	require.NoError(t, err)

	outcomes := rd.Outcomes()
	// The exporter writes numeric classifications as bare numbers and
	// retirements as letters; both fold into the same code type.
	ver, ok := outcomes.Get("VER")
	require.True(t, ok)
	assert.Equal(t, 1, ver.Classification.Position())
	assert.True(t, ver.IsFinished)

	str, ok := outcomes.Get("STR")
	require.True(t, ok)
	assert.True(t, str.IsDNF)
	assert.Equal(t, 57, outcomes.MaxScheduledLaps())
}

func TestLoadRejectsEmptyExports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"frames": [], "driver_status": {}}`), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "no frames")

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("computed_data", "2024_Bahrain_Grand_Prix_race_telemetry.json"),
		FilePath("computed_data", "2024 Bahrain Grand Prix"))
}
