// Package telemetry loads the precomputed race replay data: the ordered,
// finite frame sequence the session replays, plus the official driver
// outcomes extracted alongside it. Fetching and resampling raw timing data
// happens upstream; this package only consumes the exported file.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/jb-gy/f1-race-replay/pkg/model"
	"github.com/jb-gy/f1-race-replay/pkg/outcome"
)

// RaceData is the full content of one exported race telemetry file.
type RaceData struct {
	Frames        []model.TelemetryFrame           `json:"frames"`
	DriverColors  map[string][3]int                `json:"driver_colors"`
	TrackStatuses []model.TrackStatus              `json:"track_statuses"`
	DriverStatus  map[string]outcome.DriverOutcome `json:"driver_status"`
	FinishFrames  map[string]int                   `json:"driver_finish_frames"`
}

// Outcomes builds the immutable outcome table the detector runs against.
func (rd *RaceData) Outcomes() outcome.Table {
	return outcome.New(rd.DriverStatus)
}

// Load reads an exported race telemetry file.
func Load(path string) (*RaceData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening race telemetry file")
	}
	defer f.Close()

	var rd RaceData
	if err := json.NewDecoder(f).Decode(&rd); err != nil {
		return nil, errors.Wrapf(err, "decoding race telemetry from %s", path)
	}
	if len(rd.Frames) == 0 {
		return nil, errors.Errorf("race telemetry file %s holds no frames", path)
	}
	if len(rd.DriverStatus) == 0 {
		return nil, errors.Errorf("race telemetry file %s holds no driver outcomes", path)
	}
	return &rd, nil
}

// FilePath builds the conventional location of an event's exported
// telemetry inside the computed-data directory.
func FilePath(dataDir, eventName string) string {
	name := strings.ReplaceAll(eventName, " ", "_")
	return filepath.Join(dataDir, fmt.Sprintf("%s_race_telemetry.json", name))
}
