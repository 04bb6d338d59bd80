// Package evrecord owns the Evaluation Engine's shared value types
// (EventRecord, MatchResult) and the JSON loaders that turn ground
// truth and prediction files into normalized EventRecord slices (spec
// §6 Inputs to the core).
//
// Dependency rule: evrecord depends on nothing else in this module; it
// is the shared leaf the rest of internal/eval builds on.
package evrecord
