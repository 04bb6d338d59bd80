package l5debounce

import "github.com/fleetwatch/dms/internal/dms/l4interpret"

// rule holds the per-event-type min_duration_ms/cooldown_ms pair (spec
// §4.4).
type rule struct {
	minDurationMs float64
	cooldownMs    int64
}

var rules = map[l4interpret.EventType]rule{
	l4interpret.DriverFatigue:     {minDurationMs: 15000, cooldownMs: 20000},
	l4interpret.Microsleep:        {minDurationMs: 1500, cooldownMs: 8000},
	l4interpret.DistractedDriving: {minDurationMs: 2000, cooldownMs: 7000},
	l4interpret.LaneDeviation:     {minDurationMs: 700, cooldownMs: 4000},
	l4interpret.MobilePhoneUse:    {minDurationMs: 1000, cooldownMs: 6000},
	l4interpret.SeatbeltNotWorn:   {minDurationMs: 3000, cooldownMs: 20000},
	l4interpret.ObstructionAhead:  {minDurationMs: 800, cooldownMs: 4000},
	l4interpret.Tailgating:        {minDurationMs: 1500, cooldownMs: 5000},
}

const emissionEmaThreshold = 0.45
