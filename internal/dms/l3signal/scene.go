package l3signal

// SceneSignal is the result of deriving phone/obstruction/tailgating
// readings from an Object signal plus frame geometry (spec §4.2).
type SceneSignal struct {
	PhonePresent    bool
	PhoneConf       float64
	Obstruction     bool
	ObstructionConf float64
	Tailgating      bool
	TailgatingConf  float64
	LeadDistanceM   float64
}

const focalPx = 850.0
const laneVehicleWidthM = 1.8

// DeriveScene computes the Scene Derivation signal from a frame's
// object boxes and dimensions.
//
//   - phone_present: any PHONE box whose top-left lies in the driver
//     ROI (0,0)->(0.55W, 0.75H).
//   - lead_distance_m: over VEHICLE boxes with x1 > 0.30W, x2 < 0.70W,
//     y2 > 0.35H, the minimum of distance = 1.8*850/bbox_width_px. 0 if
//     no such box.
//   - obstruction: area_ratio = bbox_area/(W*H) > 0.13 for a lead-lane
//     vehicle box; confidence min(1, area_ratio*3).
//   - tailgating: lead_distance_m < 10; confidence min(1, (10-d)/8).
func DeriveScene(boxes []ObjectBox, width, height int) SceneSignal {
	w, h := float64(width), float64(height)
	driverROI := [4]float64{0, 0, 0.55 * w, 0.75 * h}
	laneROI := [4]float64{0.30 * w, 0.35 * h, 0.70 * w, h}

	var sig SceneSignal
	leadDistance := 999.0

	for _, box := range boxes {
		bw := max64(1.0, box.X2-box.X1)
		bh := max64(1.0, box.Y2-box.Y1)
		areaRatio := (bw * bh) / (w * h)

		if box.ClassID == ClassPhone {
			if box.X1 < driverROI[2] && box.Y1 < driverROI[3] {
				sig.PhonePresent = true
				sig.PhoneConf = max64(sig.PhoneConf, box.Confidence)
			}
		}

		inLane := box.X1 > laneROI[0] && box.X2 < laneROI[2] && box.Y2 > laneROI[1]
		if VehicleClasses[box.ClassID] && inLane {
			distance := (laneVehicleWidthM * focalPx) / bw
			if distance < leadDistance {
				leadDistance = distance
			}
			if areaRatio > 0.13 {
				sig.Obstruction = true
				sig.ObstructionConf = max64(sig.ObstructionConf, clamp01(areaRatio*3.0))
			}
			if distance < 10.0 {
				sig.Tailgating = true
				sig.TailgatingConf = max64(sig.TailgatingConf, clamp01((10.0-distance)/8.0))
			}
		}
	}

	if leadDistance < 999.0 {
		sig.LeadDistanceM = leadDistance
	}
	return sig
}
