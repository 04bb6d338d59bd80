package trip

import "github.com/fleetwatch/dms/internal/dms/l3signal"

// ProviderSet bundles the four signal capabilities an Engine needs for
// one trip.
type ProviderSet struct {
	DriverFace l3signal.DriverFaceProvider
	Lane       l3signal.LaneProvider
	Seatbelt   l3signal.SeatbeltProvider
	Object     l3signal.ObjectProvider
}

// ProviderFactory constructs one trip's ProviderSet. Each constructor
// may fail (a concrete vision binding failing to load its model
// weights, for instance); Engine.buildProviders treats that as
// recoverable per internal/errs.ErrSignalProviderUnavailable, disabling
// the dependent events and recording a limitation rather than failing
// the whole trip.
type ProviderFactory struct {
	NewDriverFace func(fps float64) (l3signal.DriverFaceProvider, error)
	NewLane       func(fps float64) (l3signal.LaneProvider, error)
	NewSeatbelt   func() (l3signal.SeatbeltProvider, error)
	NewObject     func() (l3signal.ObjectProvider, error)
}

// DefaultProviderFactory wires the heuristic reference providers from
// l3signal, none of which can fail to construct.
func DefaultProviderFactory() ProviderFactory {
	return ProviderFactory{
		NewDriverFace: func(fps float64) (l3signal.DriverFaceProvider, error) {
			return l3signal.NewHeuristicDriverFaceProvider(fps), nil
		},
		NewLane: func(fps float64) (l3signal.LaneProvider, error) {
			return l3signal.NewHeuristicLaneProvider(fps), nil
		},
		NewSeatbelt: func() (l3signal.SeatbeltProvider, error) {
			return l3signal.NewHeuristicSeatbeltProvider(), nil
		},
		NewObject: func() (l3signal.ObjectProvider, error) {
			return l3signal.NewPassthroughObjectProvider(), nil
		},
	}
}

type noopDriverFace struct{}

func (noopDriverFace) Reset(float64) {}
func (noopDriverFace) Process(l3signal.Frame, int64) l3signal.DriverFaceSignal {
	return l3signal.DriverFaceSignal{}
}

type noopLane struct{}

func (noopLane) Reset(float64) {}
func (noopLane) Process(l3signal.Frame, int64) l3signal.LaneSignal { return l3signal.LaneSignal{} }

type noopSeatbelt struct{}

func (noopSeatbelt) Reset(float64) {}
func (noopSeatbelt) Process(l3signal.Frame, int64) l3signal.SeatbeltSignal {
	return l3signal.SeatbeltSignal{}
}

type noopObject struct{}

func (noopObject) Reset(float64) {}
func (noopObject) Process(l3signal.Frame, int64) []l3signal.ObjectBox { return nil }
