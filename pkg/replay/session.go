// Package replay drives one race session: a single goroutine feeds frames
// to the detector at a fixed tick rate, publishes standings for display
// consumers, and hands the final standings to the reconciler exactly once.
package replay

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jb-gy/f1-race-replay/pkg/caster"
	"github.com/jb-gy/f1-race-replay/pkg/detector"
	"github.com/jb-gy/f1-race-replay/pkg/model"
	"github.com/jb-gy/f1-race-replay/pkg/outcome"
	"github.com/jb-gy/f1-race-replay/pkg/pubsub"
	"github.com/jb-gy/f1-race-replay/pkg/standings"
	"github.com/jb-gy/f1-race-replay/pkg/verify"
)

const (
	// PubSubStandingsPrefix is the topic standings snapshots are
	// published on, suffixed with the session ID.
	PubSubStandingsPrefix = "standings-"

	// FramesPerSecond is the rate the upstream exporter resampled the
	// telemetry at, and therefore the default playback rate.
	FramesPerSecond = 25
)

// Session owns all mutable state for one replay. Sessions are independent:
// running several races at once shares nothing but the process.
type Session struct {
	ID     string
	frames []model.TelemetryFrame

	outcomes   outcome.Table
	det        *detector.Detector
	reconciler *verify.Reconciler
	pubsubMgr  *pubsub.PubSub[string]

	// TickInterval is the wall-clock delay between frames. Zero replays
	// as fast as the loop can run, which is what tests use.
	TickInterval time.Duration

	// mu serializes detector access between the tick loop and the
	// reconciliation goroutine, and guards the maps below. The detector
	// has a single writer (step); every read from another goroutine goes
	// through Standings, which holds mu.
	mu             sync.Mutex
	positions      map[string]int
	gaps           map[string]float64
	finalPositions map[string]int
	reconciled     bool
	cancelled      bool

	reconcileOnce sync.Once
	reconcileDone chan struct{}
}

func NewSession(id string, cfg detector.Config, frames []model.TelemetryFrame, outcomes outcome.Table, reconciler *verify.Reconciler, pubsubMgr *pubsub.PubSub[string]) *Session {
	return &Session{
		ID:            id,
		frames:        frames,
		outcomes:      outcomes,
		det:           detector.New(cfg, outcomes),
		reconciler:    reconciler,
		pubsubMgr:     pubsubMgr,
		TickInterval:  time.Second / FramesPerSecond,
		reconcileDone: make(chan struct{}),
	}
}

// Run replays every frame in order and blocks until the stream is
// exhausted and any reconciliation has been applied, or until ctx is
// cancelled. Cancellation halts tick processing immediately and guarantees
// reconciliation is never started afterwards; an in-flight result is
// discarded rather than applied to the torn-down session.
func (s *Session) Run(ctx context.Context) error {
	var ticker *time.Ticker
	if s.TickInterval > 0 {
		ticker = time.NewTicker(s.TickInterval)
		defer ticker.Stop()
	}

	started := false
	for _, frame := range s.frames {
		if ticker != nil {
			select {
			case <-ctx.Done():
				s.cancel()
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			s.cancel()
			return err
		}

		s.step(frame)

		if s.det.SettlingDone() && !started {
			started = true
			go s.runReconciliation(ctx)
		}
	}

	if err := ctx.Err(); err != nil {
		s.cancel()
		return err
	}

	for _, code := range s.det.Unresolved() {
		log.Printf("driver %s ended the stream unresolved: neither retirement nor finish condition was met", code)
	}

	// The stream ending is as settled as standings can get; if the race
	// completed close enough to the end that the margin never elapsed,
	// reconcile now.
	if s.det.RaceComplete() && !started {
		started = true
		go s.runReconciliation(ctx)
	}
	if started {
		select {
		case <-s.reconcileDone:
		case <-ctx.Done():
			s.cancel()
			return ctx.Err()
		}
	}
	return nil
}

// step processes one frame and publishes the resulting snapshot. The
// detector write happens under mu so a concurrent Standings read never
// observes a half-applied tick.
func (s *Session) step(frame model.TelemetryFrame) {
	s.mu.Lock()
	s.det.ProcessFrame(frame)
	s.positions = rankByDistance(frame)
	s.gaps = gapsToLeader(frame)
	s.mu.Unlock()

	s.publish()
}

// rankByDistance orders the frame by race distance covered, leader first.
// This is the telemetry-derived position: the pre-reconciliation standing.
func rankByDistance(frame model.TelemetryFrame) map[string]int {
	codes := make([]string, 0, len(frame.Drivers))
	for code := range frame.Drivers {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		di := frame.Drivers[codes[i]].Dist
		dj := frame.Drivers[codes[j]].Dist
		if di == dj {
			return codes[i] < codes[j]
		}
		return di > dj
	})
	positions := make(map[string]int, len(codes))
	for i, code := range codes {
		positions[code] = i + 1
	}
	return positions
}

func (s *Session) cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
}

// runReconciliation performs the blocking verification call off the tick
// goroutine and applies the result atomically, unless the session was torn
// down while the call was in flight.
func (s *Session) runReconciliation(ctx context.Context) {
	s.reconcileOnce.Do(func() {
		defer close(s.reconcileDone)

		s.mu.Lock()
		if s.cancelled {
			s.mu.Unlock()
			return
		}
		current := copyPositions(s.positions)
		s.mu.Unlock()

		final, _, err := s.reconciler.Reconcile(ctx, current)
		if err != nil {
			// Telemetry-only standings remain displayed; already logged
			// by the reconciler.
			return
		}

		s.mu.Lock()
		if !s.cancelled {
			s.finalPositions = final
			s.reconciled = true
		}
		s.mu.Unlock()

		s.publish()
	})
}

// Standings returns the current displayable snapshot: classifications
// derived from detector state, positions from telemetry until the
// reconciled result lands, then the corrected ones. Holding mu across the
// resolve keeps the detector read consistent with the position maps.
func (s *Session) Standings() model.StandingsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions := s.positions
	if s.reconciled {
		positions = s.finalPositions
	}
	snapshot := standings.Resolve(s.det, s.outcomes, copyPositions(positions))
	snapshot.Reconciled = s.reconciled
	snapshot.Gaps = copyGaps(s.gaps)
	return snapshot
}

// Discrepancies returns the corrections reconciliation made, if any.
func (s *Session) Discrepancies() []model.Discrepancy {
	return s.reconciler.Discrepancies()
}

// Detector exposes read-only event state for display layers.
func (s *Session) Detector() *detector.Detector {
	return s.det
}

func (s *Session) publish() {
	if s.pubsubMgr == nil {
		return
	}
	payload, err := caster.EncodeSnapshot(s.Standings())
	if err != nil {
		log.Printf("error casting standings snapshot: %s", err.Error())
		return
	}
	s.pubsubMgr.Publish(PubSubStandingsPrefix+s.ID, payload)
}

// gapsToLeader computes each driver's distance deficit to the frame leader,
// for the timing column of display clients.
func gapsToLeader(frame model.TelemetryFrame) map[string]float64 {
	best := 0.0
	for _, sample := range frame.Drivers {
		if sample.Dist > best {
			best = sample.Dist
		}
	}
	gaps := make(map[string]float64, len(frame.Drivers))
	for code, sample := range frame.Drivers {
		gaps[code] = best - sample.Dist
	}
	return gaps
}

func copyPositions(positions map[string]int) map[string]int {
	out := make(map[string]int, len(positions))
	for code, position := range positions {
		out[code] = position
	}
	return out
}

func copyGaps(gaps map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(gaps))
	for code, gap := range gaps {
		out[code] = gap
	}
	return out
}
