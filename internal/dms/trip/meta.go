package trip

import (
	"encoding/json"
	"path/filepath"

	"github.com/fleetwatch/dms/internal/fsutil"
)

// sidecarMeta is the optional `<trip_root>/trip.json` file supplying
// the identity fields video_processor.py originally read off its `Trip`
// database row (driver_id, vehicle_id, day_folder). No relational
// store is in scope here (spec Non-goals), so a trip directory without
// this sidecar simply reports those fields as empty strings.
type sidecarMeta struct {
	DriverID  string `json:"driver_id"`
	VehicleID string `json:"vehicle_id"`
	DayFolder string `json:"day_folder"`
}

func loadSidecarMeta(fs fsutil.FileSystem, tripRoot string) sidecarMeta {
	data, err := fs.ReadFile(filepath.Join(tripRoot, "trip.json"))
	if err != nil {
		return sidecarMeta{}
	}
	var m sidecarMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return sidecarMeta{}
	}
	return m
}
