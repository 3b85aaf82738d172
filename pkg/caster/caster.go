// Package caster converts standings snapshots to and from their wire
// encoding, so pubsub topics can carry plain strings across goroutines and
// out to websocket clients unchanged.
package caster

import (
	"encoding/json"

	"github.com/jb-gy/f1-race-replay/pkg/model"
)

// EncodeSnapshot renders a snapshot as the JSON payload published on the
// standings topic and pushed to display clients.
func EncodeSnapshot(s model.StandingsSnapshot) (string, error) {
	data, err := json.Marshal(s)
	return string(data), err
}

// DecodeSnapshot parses a published payload back into a snapshot.
func DecodeSnapshot(data string) (model.StandingsSnapshot, error) {
	var s model.StandingsSnapshot
	err := json.Unmarshal([]byte(data), &s)
	return s, err
}
