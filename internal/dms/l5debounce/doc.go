// Package l5debounce turns per-frame candidate activations into
// well-formed, duration-qualified events.
//
// Responsibilities:
//   - Hold one state cell per event type (eight in total, held in a
//     fixed array indexed by l4interpret.EventType rather than a map, per
//     the corpus's cache-friendly layered-state convention) tracking
//     active_ms, last_emit_ms, ema, and start_ms.
//   - Apply the per-type activation/decay, emission-gate, and emission
//     rules unchanged from one frame to the next.
//
// Key types: Debouncer, Event.
//
// Dependency rule: L5 may depend on L1-L4, but never on L6+.
package l5debounce
