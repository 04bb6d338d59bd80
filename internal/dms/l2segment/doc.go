// Package l2segment owns Layer 2 (Segments) of the trip data model.
//
// Responsibilities: listing a trip's front/cabin clip folders, ordering
// each stream's clips by (seconds_of_day, sequence), and computing the
// scalar sync offset between the two streams.
//
// Dependency rule: L2 may depend on L1, but never on L3+.
package l2segment
