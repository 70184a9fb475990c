package domain

import "time"

// defaultWatermark is the epoch assumed for an empty store. Any plausible
// feed record postdates it, so a bootstrap run accepts everything.
var defaultWatermark = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Incident is the canonical record produced by normalization and persisted
// in the incident store. Immutable after creation; the merge step only
// appends, never edits.
type Incident struct {
	Location string    `json:"location"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	Time     time.Time `json:"datetime"`
	Kind     string    `json:"type"`
}

// Coordinate returns the incident's position.
func (i Incident) Coordinate() Coordinate {
	return Coordinate{Lat: i.Lat, Lon: i.Lon}
}

// SameEvent reports whether two incidents share an identity: an exact
// (location, timestamp) match. Location comparison is case-sensitive with
// no normalization.
func (i Incident) SameEvent(other Incident) bool {
	return i.Location == other.Location && i.Time.Equal(other.Time)
}

// Watermark returns the maximum timestamp across stored incidents, or a
// fixed default epoch when the store is empty. It bounds which candidates
// a merge considers, preventing reprocessing of old data on every run.
func Watermark(existing []Incident) time.Time {
	wm := defaultWatermark
	for _, inc := range existing {
		if inc.Time.After(wm) {
			wm = inc.Time
		}
	}
	return wm
}

// Merge appends candidates to the existing store, skipping any candidate
// dated strictly before the watermark and any whose identity already exists.
// Returns the merged store and the count of newly added records.
//
// The watermark filter means a late-arriving record dated before the newest
// stored one is never retroactively inserted — an accepted tradeoff. Dedup
// is a linear scan, O(candidates × existing), fine at daily-feed sizes.
func Merge(existing, candidates []Incident) ([]Incident, int) {
	wm := Watermark(existing)
	merged := existing
	added := 0

	for _, cand := range candidates {
		if cand.Time.Before(wm) {
			continue
		}
		duplicate := false
		for _, have := range merged {
			if have.SameEvent(cand) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		merged = append(merged, cand)
		added++
	}

	return merged, added
}
