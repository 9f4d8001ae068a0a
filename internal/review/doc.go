// Package review implements the in-memory curation passes over a playlist
// snapshot: duplicate grouping and cutoff-year filtering.
//
// Both passes are pure transformations of [models.Track] slices with no
// network or console dependencies, so the heuristics are testable in
// isolation. Interactive presentation, confirmation, and submission of the
// resulting [RemovalSet] belong to the callers in cmd and internal/ui.
//
// Duplicate matching reduces each track to a [Key] of normalized title plus
// lower-cased primary artist. Qualifier markers ("2011 Remaster", "Live",
// "Deluxe Edition") are stripped from titles before comparison; the marker
// list is exported as [QualifierMarkers]. Matching is deliberately loose —
// album, year, and duration are excluded from the key because reissues vary
// in all three — which is why every group goes through user confirmation.
package review
