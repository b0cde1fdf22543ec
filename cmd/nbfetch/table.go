package main

import (
	"time"

	"github.com/indigo-web/nbclient/pool"
	"github.com/jedib0t/go-pretty/table"
)

// renderStats formats the pool connections into a human-readable table.
func renderStats(stats []pool.SlotStat) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{
		"Conn",
		"State",
		"Peer",
		"Busy",
		"Idle",
		"Served",
		"Failures",
		"Backoff",
	})

	for _, s := range stats {
		peer := s.Addr
		if peer == "" {
			peer = "-"
		}

		t.AppendRow(table.Row{
			s.ID,
			s.State,
			peer,
			s.InFlight,
			s.Idle.Round(time.Millisecond),
			s.Served,
			s.Failures,
			s.Backoff.Round(time.Millisecond),
		})
	}

	return t.Render()
}
