// Package l1clip owns Layer 1 (Clip naming) of the trip data model.
//
// Responsibilities: parsing camera clip filenames into a timestamp and
// sequence tag, and deriving the sort key the Segment Assembler uses
// to order a stream's clips. This layer produces no segments; it only
// knows how to read a filename.
//
// Dependency rule: L1 has no inward dependencies on higher layers.
package l1clip
