package multimodal

// IntermodalAccessEgress describes how travelers reach and leave long-distance stops
type IntermodalAccessEgress struct {
	Mode                        TransportMode
	MaxRadiusMeters             float64
	InitialSearchRadiusMeters   float64
	SearchExtensionRadiusMeters float64
}

// RoutingParameters is what the external router gets for a single traveler's trip
type RoutingParameters struct {
	// Chosen long-distance mode
	Mode         TransportMode
	AccessEgress []IntermodalAccessEgress
	// Multiplier of travel disutility per route mode. Zero (or missing) weight excludes the mode from search
	ModeWeights map[TransportMode]float64
	// Constant utility of the chosen mode
	ModeConstant float64
}

// Allows checks if router may use routes of given mode
func (params RoutingParameters) Allows(mode TransportMode) bool {
	weight, ok := params.ModeWeights[mode]
	return ok && weight > 0
}

var (
	// Car access and egress to long-distance stops
	defaultAccessEgress = []IntermodalAccessEgress{
		{
			Mode:                        MODE_CAR,
			MaxRadiusMeters:             500 * 1000,
			InitialSearchRadiusMeters:   100 * 1000,
			SearchExtensionRadiusMeters: 150 * 1000,
		},
	}
	defaultModeConstants = map[TransportMode]float64{
		MODE_TRAIN:    0,
		MODE_AIRPLANE: -12,
	}
)
