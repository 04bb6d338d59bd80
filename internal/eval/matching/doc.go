// Package matching implements the Evaluation Engine's temporal-IoU
// event matcher (spec §5 Evaluation Engine: core). For each (trip_id,
// event_type) group it greedily pairs predictions against ground
// truth, admitting a candidate pair when either its temporal IoU
// clears the configured threshold or its center timestamps fall
// within the configured tolerance, and emits one MatchResult per
// prediction (tp/fp) plus one per unmatched ground-truth event (fn).
package matching
