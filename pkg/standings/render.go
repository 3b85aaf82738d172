package standings

import (
	"bytes"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jb-gy/f1-race-replay/pkg/helper"
	"github.com/jb-gy/f1-race-replay/pkg/model"
	"github.com/jb-gy/f1-race-replay/pkg/outcome"
)

const (
	tablePosition = "POS"
	tableDriver   = "DRV"
	tableLaps     = "LAPS"
	tableGap      = "GAP"
	tableStatus   = "STATUS"
)

// RenderTable renders a snapshot as a console table, ordered by position.
func RenderTable(snapshot model.StandingsSnapshot, outcomes outcome.Table) string {
	codes := make([]string, 0, len(snapshot.Positions))
	for code := range snapshot.Positions {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		return snapshot.Positions[codes[i]] < snapshot.Positions[codes[j]]
	})

	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendSeparator()
	t.AppendHeader(table.Row{tablePosition, tableDriver, tableLaps, tableGap, tableStatus})
	for _, code := range codes {
		t.AppendRow([]interface{}{
			helper.FormatPosition(snapshot.Positions[code]),
			code,
			outcomes.ScheduledLaps(code),
			helper.GapToLeader(snapshot.Gaps[code]),
			snapshot.Classifications[code].String(),
		})
	}
	t.Render()
	return b.String()
}

// RenderDiscrepancies renders the reconciliation report: one row per
// driver whose telemetry position was corrected.
func RenderDiscrepancies(discrepancies []model.Discrepancy) string {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendSeparator()
	t.AppendHeader(table.Row{tableDriver, "TELEMETRY", "VERIFIED"})
	for _, d := range discrepancies {
		t.AppendRow([]interface{}{
			d.Driver,
			helper.FormatPosition(d.TelemetryPosition),
			helper.FormatPosition(d.VerifiedPosition),
		})
	}
	t.Render()
	return b.String()
}
