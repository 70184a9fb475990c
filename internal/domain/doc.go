// Package domain models travel-risk assessment over civil-defense data.
//
// # Data Sources
//
// Incident records originate from public rocket-alert feeds. The primary
// source is a structured JSON endpoint returning an array of alert objects;
// when it is unavailable the provider's home page embeds the same array in a
// <script> block (an "alertData = [...]" assignment) which the feed adapter
// scrapes as a fallback. A per-day history endpoint serves the same array
// shape for an ISO date, used for backfilling an empty store.
//
// # Feed Conventions
//
// Field names vary between feed generations:
//
//	location:  "location" or "name"
//	timestamp: "time" or "date"
//	latitude:  "lat" or "latitude"
//	longitude: "lon" or "longitude"
//	category:  "type", defaulting to "alert" when absent
//
// Timestamps carry no timezone and are treated as UTC. Three formats appear
// in the wild and are tried in order:
//
//	2006-01-02T15:04:05
//	2006-01-02 15:04:05
//	RFC 3339 (e.g. 2024-05-23T14:35:00+00:00)
//
// Records missing a location or an unparseable timestamp are dropped, never
// fatal to the batch. Records without coordinates are forward-geocoded; a
// geocoding failure also drops the record rather than defaulting to (0,0),
// which would corrupt proximity calculations.
//
// # Identity and Watermark
//
// Two incidents describe the same event iff their (location, timestamp)
// pairs match exactly — case-sensitive, no normalization. The store's
// watermark is the maximum timestamp across stored incidents (a fixed epoch
// when empty) and bounds which candidates a merge will even consider.
//
// # Exposure and Risk
//
// A route point is exposed when its nearest shelter is strictly farther than
// the configured threshold. Exposure statistics plus recent-incident counts
// feed one of two selectable classification policies (ratio or absolute)
// producing a LOW/MODERATE/HIGH level, or UNKNOWN when the route could not
// be retrieved at all.
package domain
