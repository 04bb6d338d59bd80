package l3signal

// Object class ids that matter to Scene Derivation (spec §4.2).
const (
	ClassPhone = 67
)

// VehicleClasses is the set of object-detector class ids treated as
// vehicles for lead-distance/obstruction/tailgating geometry.
var VehicleClasses = map[int]bool{2: true, 3: true, 5: true, 7: true}

// ObjectBox is a single detection: a class id, confidence, and
// axis-aligned bounding box in pixel coordinates.
type ObjectBox struct {
	ClassID    int
	Confidence float64
	X1, Y1     float64
	X2, Y2     float64
}

// FaceMeasurement is the per-frame facial-landmark measurement a
// reference face-mesh library would supply. Detected is false when no
// face was found in the frame.
type FaceMeasurement struct {
	Detected bool
	EAR      float64
	MAR      float64
	YawRatio float64
}

// LaneMeasurement is the per-frame edge/line measurement a reference
// lane detector would supply.
type LaneMeasurement struct {
	LinesFound  bool
	OffsetRatio float64
}

// SeatbeltMeasurement is the per-frame edge/line measurement a
// reference seatbelt detector would supply.
type SeatbeltMeasurement struct {
	LinesFound    bool
	DiagonalCount int
}

// Frame is the per-frame input handed to every signal provider. It
// stands in for whatever a concrete vision pipeline would have
// produced for this frame; providers are swappable as long as they
// return values within the contracted ranges for the same Frame.
type Frame struct {
	Width, Height int
	Face          FaceMeasurement
	Lane          LaneMeasurement
	Seatbelt      SeatbeltMeasurement
	Objects       []ObjectBox
}
