// Package l3signal owns Layer 3 (Signals) of the trip data model.
//
// Responsibilities: the signal provider contracts (Driver Face, Lane,
// Object, Seatbelt) that any concrete vision implementation must
// satisfy, and the Scene Derivation step that turns an Object signal
// plus frame geometry into phone/obstruction/tailgating readings. The
// concrete computer-vision model bindings are an external collaborator
// (spec §1); this package ships the contract plus heuristic reference
// implementations that operate on pre-extracted per-frame measurements
// rather than raw pixels.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
package l3signal
