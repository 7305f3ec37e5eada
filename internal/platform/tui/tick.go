// Package tui provides the Bubble Tea front end for bastion.
// It maps keys to intents, draws game views and drives match transitions.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a simulation frame.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// frameDelta returns the seconds between two ticks. The first tick after a
// (re)start uses one nominal frame.
func frameDelta(last, now time.Time, tickRate int) float64 {
	if last.IsZero() || !now.After(last) {
		if tickRate <= 0 {
			tickRate = 60
		}
		return 1 / float64(tickRate)
	}
	return now.Sub(last).Seconds()
}

func timeOf(t TickMsg) time.Time { return time.Time(t) }
