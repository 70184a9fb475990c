package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze "now" via SetClock.
// Lookback windows, watermark defaults, and backfill date ranges all read it.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock exposes the current time source so callers outside the package
// (the ingest ticker, backfill date range) share the same injectable clock.
func Clock() clockwork.Clock { return clock }
