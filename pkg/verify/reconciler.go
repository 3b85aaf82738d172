package verify

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/jb-gy/f1-race-replay/pkg/helper"
	"github.com/jb-gy/f1-race-replay/pkg/model"
)

const nonClassifiedPosition = helper.NonClassifiedPosition

// Fetcher supplies the authoritative position map for a race. Satisfied by
// Source (client + cache) and by plain funcs in tests.
type Fetcher interface {
	Positions(ctx context.Context) (map[string]int, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (map[string]int, error)

func (f FetcherFunc) Positions(ctx context.Context) (map[string]int, error) {
	return f(ctx)
}

// Source fetches results through the on-disk cache first and the Jolpica
// API second. The cache may be nil, in which case every call is a network
// call (still at most one per session, the Reconciler guarantees that).
type Source struct {
	Client *Client
	Cache  *Cache
	Season int
	Round  int
}

func (s *Source) Positions(ctx context.Context) (map[string]int, error) {
	if s.Cache != nil {
		if results, ok, err := s.Cache.Get(s.Season, s.Round); err != nil {
			log.Printf("results cache read failed: %s", err.Error())
		} else if ok {
			return positionsByCode(results), nil
		}
	}

	results, err := s.Client.FetchRaceResults(ctx, s.Season, s.Round)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Put(s.Season, s.Round, results); err != nil {
			log.Printf("results cache write failed: %s", err.Error())
		}
	}
	return positionsByCode(results), nil
}

func positionsByCode(results []Result) map[string]int {
	positions := make(map[string]int, len(results))
	for _, r := range results {
		positions[r.Code] = r.Position
	}
	return positions
}

// Reconciler performs the one-shot post-completion comparison of telemetry
// standings against the authoritative source. Concurrent or repeated
// invocations collapse into a single effective call: the first caller does
// the work, everyone after gets the stored outcome.
type Reconciler struct {
	fetcher Fetcher

	mu            sync.Mutex
	done          bool
	final         map[string]int
	discrepancies []model.Discrepancy
}

func NewReconciler(fetcher Fetcher) *Reconciler {
	return &Reconciler{fetcher: fetcher}
}

// Done reports whether reconciliation has already run for this session.
func (r *Reconciler) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Discrepancies returns the corrections found by the first run.
func (r *Reconciler) Discrepancies() []model.Discrepancy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Discrepancy(nil), r.discrepancies...)
}

// Reconcile compares current against the authoritative positions and
// returns the final standings plus the corrections made.
//
// Policy: any mismatch means the authoritative mapping wins outright for
// every driver it covers; drivers it does not cover keep their telemetry
// positions (the source may be incomplete, that is not an error). When the
// fetch fails the telemetry standings stand unverified (reported, never
// fatal) and no retry happens: the source is rate-limited and the session
// already consumed its one call.
//
// A second invocation is a no-op: it returns the stored final standings
// and an empty discrepancy list.
func (r *Reconciler) Reconcile(ctx context.Context, current map[string]int) (map[string]int, []model.Discrepancy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return copyPositions(r.final), nil, nil
	}

	verified, err := r.fetcher.Positions(ctx)
	if err != nil {
		r.done = true
		r.final = copyPositions(current)
		log.Printf("leaderboard verification unavailable, keeping telemetry positions: %s", err.Error())
		return copyPositions(r.final), nil, err
	}

	var discrepancies []model.Discrepancy
	for code, position := range current {
		verifiedPosition, ok := verified[code]
		if !ok {
			continue
		}
		if position != verifiedPosition {
			discrepancies = append(discrepancies, model.Discrepancy{
				Driver:            code,
				TelemetryPosition: position,
				VerifiedPosition:  verifiedPosition,
			})
		}
	}
	sort.Slice(discrepancies, func(i, j int) bool {
		return discrepancies[i].VerifiedPosition < discrepancies[j].VerifiedPosition
	})

	final := copyPositions(current)
	if len(discrepancies) > 0 {
		for code, position := range verified {
			final[code] = position
		}
	}

	r.done = true
	r.final = final
	r.discrepancies = discrepancies

	if len(discrepancies) > 0 {
		log.Printf("found %d position discrepancies:", len(discrepancies))
		for _, d := range discrepancies {
			log.Printf("  %s", d.String())
		}
	} else {
		log.Println("leaderboard verification complete, no discrepancies found")
	}

	return copyPositions(final), discrepancies, nil
}

func copyPositions(positions map[string]int) map[string]int {
	out := make(map[string]int, len(positions))
	for code, position := range positions {
		out[code] = position
	}
	return out
}
