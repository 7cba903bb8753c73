package multimodal

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
)

type DecisionReason uint16

const (
	// Mode chosen by distance threshold
	REASON_THRESHOLD = DecisionReason(iota + 1)
	// Previous decision of the same traveler reused
	REASON_CACHED
	// Only one long-distance mode is available for the trip
	REASON_SINGLE_CANDIDATE
	// Default mode used because trip context is insufficient
	REASON_FALLBACK
)

var decisionReasonNames = [...]string{"threshold", "cached", "single_candidate", "fallback"}

func (iotaIdx DecisionReason) String() string {
	if iotaIdx == 0 || int(iotaIdx) > len(decisionReasonNames) {
		return "undefined"
	}
	return decisionReasonNames[iotaIdx-1]
}

// SelectorConfig is the decision policy of ModeChoiceSelector
type SelectorConfig struct {
	// Trips strictly longer than threshold go by airplane, others (including exactly threshold) by train
	DistanceThresholdMeters float64
	// Used when trip context is insufficient
	DefaultMode TransportMode
	// Relative change of trip distance since cached decision which makes selector decide again.
	// E.g. 0.25 means 'more than 25% longer or shorter'
	MaterialChangeRatio float64
	Metric              DistanceMetric
	AccessEgress        []IntermodalAccessEgress
	// Weight of the long-distance mode which has not been chosen. Zero restricts search to the chosen mode only
	RejectedModeWeight float64
	ModeConstants      map[TransportMode]float64
}

// DefaultSelectorConfig returns policy with 300km threshold, train fallback and car access/egress
func DefaultSelectorConfig() SelectorConfig {
	accessEgress := make([]IntermodalAccessEgress, len(defaultAccessEgress))
	copy(accessEgress, defaultAccessEgress)
	constants := make(map[TransportMode]float64, len(defaultModeConstants))
	for mode, value := range defaultModeConstants {
		constants[mode] = value
	}
	return SelectorConfig{
		DistanceThresholdMeters: 300 * 1000,
		DefaultMode:             MODE_TRAIN,
		MaterialChangeRatio:     0.25,
		Metric:                  METRIC_HAVERSINE,
		AccessEgress:            accessEgress,
		RejectedModeWeight:      0,
		ModeConstants:           constants,
	}
}

func (cfg SelectorConfig) String() string {
	accessEgress := make([]string, len(cfg.AccessEgress))
	for i, ae := range cfg.AccessEgress {
		accessEgress[i] = fmt.Sprintf("%s(max=%.0fm, initial=%.0fm, extension=%.0fm)", ae.Mode, ae.MaxRadiusMeters, ae.InitialSearchRadiusMeters, ae.SearchExtensionRadiusMeters)
	}
	return fmt.Sprintf(`
Mode choice selector parameters:
	distance_threshold_meters: %f
	default_mode: '%s'
	material_change_ratio: %f
	metric: '%s'
	access_egress: '%s'
	rejected_mode_weight: %f
	mode_constants: %v
	`,
		cfg.DistanceThresholdMeters,
		cfg.DefaultMode,
		cfg.MaterialChangeRatio,
		cfg.Metric,
		strings.Join(accessEgress, ","),
		cfg.RejectedModeWeight,
		cfg.ModeConstants,
	)
}

// Decision is the result of a single selector query
type Decision struct {
	Person         PersonID
	Mode           TransportMode
	Reason         DecisionReason
	DistanceMeters float64
	Params         RoutingParameters
	// Non-nil when trip context was insufficient and default mode has been used
	Err error
}

// SelectorStats are counters accumulated over the selector lifetime
type SelectorStats struct {
	Queries  int64
	Train    int64
	Airplane int64
	Reused   int64
	Fallback int64
}

// ModeChoiceSelector decides per traveler whether train or airplane routing parameters apply.
// It is safe for concurrent use.
type ModeChoiceSelector struct {
	cfg    SelectorConfig
	store  DecisionStore
	hook   func(Decision)
	logger *slog.Logger

	queries  atomic.Int64
	train    atomic.Int64
	airplane atomic.Int64
	reused   atomic.Int64
	fallback atomic.Int64
}

func WithDecisionStore(store DecisionStore) func(*ModeChoiceSelector) {
	return func(sel *ModeChoiceSelector) {
		sel.store = store
	}
}

// WithDecisionHook registers function called after every decision. It is called from the querying goroutine
func WithDecisionHook(hook func(Decision)) func(*ModeChoiceSelector) {
	return func(sel *ModeChoiceSelector) {
		sel.hook = hook
	}
}

func WithLogger(logger *slog.Logger) func(*ModeChoiceSelector) {
	return func(sel *ModeChoiceSelector) {
		sel.logger = logger
	}
}

func NewModeChoiceSelector(cfg SelectorConfig, options ...func(*ModeChoiceSelector)) *ModeChoiceSelector {
	if cfg.DefaultMode != MODE_TRAIN && cfg.DefaultMode != MODE_AIRPLANE {
		cfg.DefaultMode = MODE_TRAIN
	}
	if cfg.Metric == 0 {
		cfg.Metric = METRIC_HAVERSINE
	}
	if cfg.DistanceThresholdMeters <= 0 {
		cfg.DistanceThresholdMeters = DefaultSelectorConfig().DistanceThresholdMeters
	}
	sel := &ModeChoiceSelector{
		cfg:    cfg,
		store:  NewShardedDecisionStore(defaultDecisionShards),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(sel)
	}
	return sel
}

func (sel *ModeChoiceSelector) Config() SelectorConfig {
	return sel.cfg
}

// Store returns decision cache of the selector
func (sel *ModeChoiceSelector) Store() DecisionStore {
	return sel.store
}

// Select returns routing parameters for the trip of the person. It never fails:
// insufficient context gives default mode with Decision.Err set.
func (sel *ModeChoiceSelector) Select(person PersonID, trip TripContext) Decision {
	decision := sel.decide(person, trip)
	decision.Params = sel.parametersFor(decision.Mode)

	sel.queries.Add(1)
	switch decision.Mode {
	case MODE_TRAIN:
		sel.train.Add(1)
	case MODE_AIRPLANE:
		sel.airplane.Add(1)
	}
	switch decision.Reason {
	case REASON_CACHED:
		sel.reused.Add(1)
	case REASON_FALLBACK:
		sel.fallback.Add(1)
		sel.logger.Debug("mode choice fallback", "person", string(person), "mode", decision.Mode.String(), "error", decision.Err)
	}
	if sel.hook != nil {
		sel.hook(decision)
	}
	return decision
}

func (sel *ModeChoiceSelector) decide(person PersonID, trip TripContext) Decision {
	candidates := trip.Candidates
	if candidates.Len() == 0 {
		candidates = NewModeSet(MODE_TRAIN, MODE_AIRPLANE)
	}
	trainOK, airplaneOK := candidates.Contains(MODE_TRAIN), candidates.Contains(MODE_AIRPLANE)
	switch {
	case !trainOK && !airplaneOK:
		return Decision{
			Person: person,
			Mode:   sel.cfg.DefaultMode,
			Reason: REASON_FALLBACK,
			Err:    &InsufficientContextError{PersonID: person, Reason: fmt.Sprintf("no long-distance mode among candidates '%s'", candidates)},
		}
	case trainOK && !airplaneOK:
		return Decision{Person: person, Mode: MODE_TRAIN, Reason: REASON_SINGLE_CANDIDATE, DistanceMeters: sel.distance(trip)}
	case airplaneOK && !trainOK:
		return Decision{Person: person, Mode: MODE_AIRPLANE, Reason: REASON_SINGLE_CANDIDATE, DistanceMeters: sel.distance(trip)}
	}

	if trip.Origin == nil || trip.Destination == nil {
		missing := "origin"
		if trip.Origin != nil {
			missing = "destination"
		} else if trip.Destination == nil {
			missing = "origin and destination"
		}
		return Decision{
			Person: person,
			Mode:   sel.cfg.DefaultMode,
			Reason: REASON_FALLBACK,
			Err:    &InsufficientContextError{PersonID: person, Reason: "missing " + missing + " coordinates"},
		}
	}
	distance := sel.cfg.Metric.Distance(*trip.Origin, *trip.Destination)
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return Decision{
			Person: person,
			Mode:   sel.cfg.DefaultMode,
			Reason: REASON_FALLBACK,
			Err:    &InsufficientContextError{PersonID: person, Reason: "distance between origin and destination is not a finite number"},
		}
	}

	reason := REASON_THRESHOLD
	cached := sel.store.Update(person, func(prev CachedDecision, found bool) CachedDecision {
		if found && candidates.Contains(prev.Mode) && !sel.materialChange(prev.DistanceMeters, distance) {
			reason = REASON_CACHED
			prev.Decisions++
			return prev
		}
		return CachedDecision{
			Mode:           sel.byThreshold(distance),
			DistanceMeters: distance,
			Decisions:      prev.Decisions + 1,
		}
	})
	return Decision{Person: person, Mode: cached.Mode, Reason: reason, DistanceMeters: distance}
}

// byThreshold returns airplane for distances strictly above threshold and train otherwise
func (sel *ModeChoiceSelector) byThreshold(distance float64) TransportMode {
	if distance > sel.cfg.DistanceThresholdMeters {
		return MODE_AIRPLANE
	}
	return MODE_TRAIN
}

func (sel *ModeChoiceSelector) materialChange(cachedDistance, distance float64) bool {
	return math.Abs(distance-cachedDistance) > sel.cfg.MaterialChangeRatio*cachedDistance
}

// distance returns -1 when it can't be evaluated
func (sel *ModeChoiceSelector) distance(trip TripContext) float64 {
	if trip.Origin == nil || trip.Destination == nil {
		return -1
	}
	return sel.cfg.Metric.Distance(*trip.Origin, *trip.Destination)
}

func (sel *ModeChoiceSelector) parametersFor(mode TransportMode) RoutingParameters {
	rejected := MODE_AIRPLANE
	if mode == MODE_AIRPLANE {
		rejected = MODE_TRAIN
	}
	accessEgress := make([]IntermodalAccessEgress, len(sel.cfg.AccessEgress))
	copy(accessEgress, sel.cfg.AccessEgress)
	return RoutingParameters{
		Mode:         mode,
		AccessEgress: accessEgress,
		ModeWeights: map[TransportMode]float64{
			mode:     1.0,
			rejected: sel.cfg.RejectedModeWeight,
		},
		ModeConstant: sel.cfg.ModeConstants[mode],
	}
}

func (sel *ModeChoiceSelector) Stats() SelectorStats {
	return SelectorStats{
		Queries:  sel.queries.Load(),
		Train:    sel.train.Load(),
		Airplane: sel.airplane.Load(),
		Reused:   sel.reused.Load(),
		Fallback: sel.fallback.Load(),
	}
}
