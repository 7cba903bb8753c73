package multimodal

import (
	"fmt"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// euclideanTrip builds trip of given length (meters) in projected coordinates
func euclideanTrip(length float64, candidates ...TransportMode) TripContext {
	origin := orb.Point{0, 0}
	destination := orb.Point{length, 0}
	return TripContext{
		Origin:      &origin,
		Destination: &destination,
		Candidates:  NewModeSet(candidates...),
	}
}

func euclideanSelector(options ...func(*ModeChoiceSelector)) *ModeChoiceSelector {
	cfg := DefaultSelectorConfig()
	cfg.Metric = METRIC_EUCLIDEAN
	return NewModeChoiceSelector(cfg, options...)
}

func TestSelectByThreshold(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		expected TransportMode
	}{
		{"short trip", 120 * 1000, MODE_TRAIN},
		{"long trip", 450 * 1000, MODE_AIRPLANE},
		{"exactly at threshold", 300 * 1000, MODE_TRAIN},
		{"just above threshold", 300*1000 + 1, MODE_AIRPLANE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := euclideanSelector()
			decision := sel.Select("p1", euclideanTrip(tt.distance, MODE_TRAIN, MODE_AIRPLANE))
			if decision.Mode != tt.expected {
				t.Errorf("Mode must be %s, but got %s", tt.expected, decision.Mode)
			}
			if decision.Reason != REASON_THRESHOLD {
				t.Errorf("Reason must be %s, but got %s", REASON_THRESHOLD, decision.Reason)
			}
			if decision.Params.Mode != tt.expected {
				t.Errorf("Routing parameters mode must be %s, but got %s", tt.expected, decision.Params.Mode)
			}
			if !decision.Params.Allows(tt.expected) {
				t.Errorf("Routing parameters must allow %s", tt.expected)
			}
		})
	}
}

func TestSelectZeroConfig(t *testing.T) {
	sel := NewModeChoiceSelector(SelectorConfig{Metric: METRIC_EUCLIDEAN})
	if sel.Config().DistanceThresholdMeters != 300*1000 {
		t.Errorf("Threshold must be %v, but got %v", 300*1000, sel.Config().DistanceThresholdMeters)
	}
	decision := sel.Select("p1", euclideanTrip(1, MODE_TRAIN, MODE_AIRPLANE))
	if decision.Mode != MODE_TRAIN {
		t.Errorf("Mode must be %s, but got %s", MODE_TRAIN, decision.Mode)
	}
	decision = sel.Select("p2", euclideanTrip(900*1000, MODE_TRAIN, MODE_AIRPLANE))
	if decision.Mode != MODE_AIRPLANE {
		t.Errorf("Mode must be %s, but got %s", MODE_AIRPLANE, decision.Mode)
	}
}

func TestEnumZeroValueString(t *testing.T) {
	tests := []struct {
		name string
		str  string
	}{
		{"entity kind", EntityKind(0).String()},
		{"distance metric", DistanceMetric(0).String()},
		{"decision reason", DecisionReason(0).String()},
		{"highway type", HighwayType(0).String()},
		{"link type out of range", LinkType(99).String()},
		{"access type out of range", AccessType(99).String()},
		{"transport mode out of range", TransportMode(99).String()},
	}
	for _, tt := range tests {
		if tt.str != "undefined" {
			t.Errorf("String of %s must be '%s', but got '%s'", tt.name, "undefined", tt.str)
		}
	}
	// Zero config must be printable
	if str := (SelectorConfig{}).String(); str == "" {
		t.Error("Zero config must give non-empty string")
	}
}

func TestSelectParameters(t *testing.T) {
	sel := euclideanSelector()
	decision := sel.Select("p1", euclideanTrip(900*1000, MODE_TRAIN, MODE_AIRPLANE))
	params := decision.Params
	if params.Allows(MODE_TRAIN) {
		t.Error("Airplane parameters must not allow train routes")
	}
	if params.ModeConstant != -12 {
		t.Errorf("Airplane constant must be %v, but got %v", -12, params.ModeConstant)
	}
	if len(params.AccessEgress) != 1 {
		t.Fatalf("Number of access/egress modes must be %d, but got %d", 1, len(params.AccessEgress))
	}
	ae := params.AccessEgress[0]
	if ae.Mode != MODE_CAR || ae.MaxRadiusMeters != 500000 || ae.InitialSearchRadiusMeters != 100000 || ae.SearchExtensionRadiusMeters != 150000 {
		t.Errorf("Access/egress must be car with 500/100/150 km radii, but got %+v", ae)
	}
	// Parameters are copies: mutating them does not affect the selector
	params.AccessEgress[0].Mode = MODE_WALK
	again := sel.Select("p1", euclideanTrip(900*1000, MODE_TRAIN, MODE_AIRPLANE))
	if again.Params.AccessEgress[0].Mode != MODE_CAR {
		t.Errorf("Access/egress mode must stay %s, but got %s", MODE_CAR, again.Params.AccessEgress[0].Mode)
	}
}

func TestSelectIdempotent(t *testing.T) {
	sel := euclideanSelector()
	trip := euclideanTrip(350*1000, MODE_TRAIN, MODE_AIRPLANE)
	first := sel.Select("p1", trip)
	for i := 0; i < 10; i++ {
		next := sel.Select("p1", trip)
		if next.Mode != first.Mode {
			t.Fatalf("Repeated query %d must give %s, but got %s", i, first.Mode, next.Mode)
		}
		if next.Reason != REASON_CACHED {
			t.Errorf("Repeated query must reuse decision, but got reason %s", next.Reason)
		}
	}
	cached, ok := sel.Store().Get("p1")
	if !ok {
		t.Fatal("Decision must be cached")
	}
	if cached.Decisions != 11 {
		t.Errorf("Number of decisions must be %d, but got %d", 11, cached.Decisions)
	}
}

func TestSelectConsistency(t *testing.T) {
	sel := euclideanSelector()
	first := sel.Select("p1", euclideanTrip(310*1000, MODE_TRAIN, MODE_AIRPLANE))
	if first.Mode != MODE_AIRPLANE {
		t.Fatalf("Mode must be %s, but got %s", MODE_AIRPLANE, first.Mode)
	}
	// Slightly shorter trip crosses threshold but does not change materially: decision is kept
	second := sel.Select("p1", euclideanTrip(290*1000, MODE_TRAIN, MODE_AIRPLANE))
	if second.Mode != MODE_AIRPLANE || second.Reason != REASON_CACHED {
		t.Errorf("Decision must be reused (%s), but got %s (%s)", MODE_AIRPLANE, second.Mode, second.Reason)
	}
	// Material change: decide again
	third := sel.Select("p1", euclideanTrip(100*1000, MODE_TRAIN, MODE_AIRPLANE))
	if third.Mode != MODE_TRAIN || third.Reason != REASON_THRESHOLD {
		t.Errorf("Decision must be recomputed (%s), but got %s (%s)", MODE_TRAIN, third.Mode, third.Reason)
	}
	cached, _ := sel.Store().Get("p1")
	if cached.Mode != MODE_TRAIN || cached.DistanceMeters != 100*1000 {
		t.Errorf("Cache must be overwritten with train at 100km, but got %+v", cached)
	}
	// Other travelers are independent
	other := sel.Select("p2", euclideanTrip(290*1000, MODE_TRAIN, MODE_AIRPLANE))
	if other.Mode != MODE_TRAIN {
		t.Errorf("Mode of other traveler must be %s, but got %s", MODE_TRAIN, other.Mode)
	}
}

func TestSelectSingleCandidate(t *testing.T) {
	sel := euclideanSelector()
	decision := sel.Select("p1", euclideanTrip(900*1000, MODE_TRAIN))
	if decision.Mode != MODE_TRAIN || decision.Reason != REASON_SINGLE_CANDIDATE {
		t.Errorf("Single candidate must be chosen (%s), but got %s (%s)", MODE_TRAIN, decision.Mode, decision.Reason)
	}
	decision = sel.Select("p2", euclideanTrip(10*1000, MODE_AIRPLANE, MODE_CAR))
	if decision.Mode != MODE_AIRPLANE {
		t.Errorf("Single candidate must be chosen (%s), but got %s", MODE_AIRPLANE, decision.Mode)
	}
	if sel.Store().Len() != 0 {
		t.Errorf("Single candidate decisions must not be cached, but got %d entries", sel.Store().Len())
	}

	// Cached mode which is no longer a candidate is not reused
	sel.Select("p3", euclideanTrip(900*1000, MODE_TRAIN, MODE_AIRPLANE))
	decision = sel.Select("p3", euclideanTrip(900*1000, MODE_TRAIN))
	if decision.Mode != MODE_TRAIN {
		t.Errorf("Mode must be %s, but got %s", MODE_TRAIN, decision.Mode)
	}
}

func TestSelectFallback(t *testing.T) {
	tests := []struct {
		name string
		trip TripContext
	}{
		{"missing origin", TripContext{Destination: &orb.Point{1, 1}, Candidates: NewModeSet(MODE_TRAIN, MODE_AIRPLANE)}},
		{"missing destination", TripContext{Origin: &orb.Point{1, 1}, Candidates: NewModeSet(MODE_TRAIN, MODE_AIRPLANE)}},
		{"missing both", TripContext{Candidates: NewModeSet(MODE_TRAIN, MODE_AIRPLANE)}},
		{"no long-distance candidates", euclideanTrip(900*1000, MODE_CAR, MODE_WALK)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := euclideanSelector()
			decision := sel.Select("p1", tt.trip)
			if decision.Mode != MODE_TRAIN {
				t.Errorf("Mode must be default %s, but got %s", MODE_TRAIN, decision.Mode)
			}
			if decision.Reason != REASON_FALLBACK {
				t.Errorf("Reason must be %s, but got %s", REASON_FALLBACK, decision.Reason)
			}
			var ctxErr *InsufficientContextError
			if !errors.As(decision.Err, &ctxErr) {
				t.Fatalf("Error must be InsufficientContextError, but got %v", decision.Err)
			}
			if ctxErr.PersonID != "p1" {
				t.Errorf("Person must be %s, but got %s", "p1", ctxErr.PersonID)
			}
			if sel.Store().Len() != 0 {
				t.Errorf("Fallback must not touch cache, but got %d entries", sel.Store().Len())
			}
			if sel.Stats().Fallback != 1 {
				t.Errorf("Number of fallbacks must be %d, but got %d", 1, sel.Stats().Fallback)
			}
		})
	}
}

func TestSelectConfiguredDefaultMode(t *testing.T) {
	cfg := DefaultSelectorConfig()
	cfg.DefaultMode = MODE_AIRPLANE
	sel := NewModeChoiceSelector(cfg)
	decision := sel.Select("p1", TripContext{})
	if decision.Mode != MODE_AIRPLANE {
		t.Errorf("Mode must be %s, but got %s", MODE_AIRPLANE, decision.Mode)
	}

	// Empty candidate set means both long-distance modes
	haversine := NewModeChoiceSelector(DefaultSelectorConfig())
	berlin, munich := orb.Point{13.4050, 52.5200}, orb.Point{11.5820, 48.1351}
	decision = haversine.Select("p2", TripContext{Origin: &berlin, Destination: &munich})
	if decision.Mode != MODE_AIRPLANE {
		t.Errorf("Berlin-Munich (~500km) must go by %s, but got %s", MODE_AIRPLANE, decision.Mode)
	}
}

func TestSelectConcurrent(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[PersonID]map[TransportMode]int)
	sel := euclideanSelector(WithDecisionHook(func(decision Decision) {
		mu.Lock()
		defer mu.Unlock()
		if seen[decision.Person] == nil {
			seen[decision.Person] = make(map[TransportMode]int)
		}
		seen[decision.Person][decision.Mode]++
	}))

	const (
		travelers = 200
		workers   = 16
		repeats   = 20
	)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < repeats; r++ {
				for i := 0; i < travelers; i++ {
					// Odd travelers fly, even ones take train
					distance := 100.0 * 1000
					if i%2 == 1 {
						distance = 800.0 * 1000
					}
					sel.Select(PersonID(fmt.Sprintf("p%d", i)), euclideanTrip(distance, MODE_TRAIN, MODE_AIRPLANE))
				}
			}
		}()
	}
	wg.Wait()

	if sel.Store().Len() != travelers {
		t.Errorf("Number of cached travelers must be %d, but got %d", travelers, sel.Store().Len())
	}
	stats := sel.Stats()
	total := int64(travelers * workers * repeats)
	if stats.Queries != total {
		t.Errorf("Number of queries must be %d, but got %d", total, stats.Queries)
	}
	// Every traveler is decided by threshold exactly once, the rest is reused
	if stats.Reused != total-travelers {
		t.Errorf("Number of reused decisions must be %d, but got %d", total-travelers, stats.Reused)
	}
	if stats.Train != total/2 || stats.Airplane != total/2 {
		t.Errorf("Decisions must be split evenly, but got train=%d airplane=%d", stats.Train, stats.Airplane)
	}
	for i := 0; i < travelers; i++ {
		person := PersonID(fmt.Sprintf("p%d", i))
		if len(seen[person]) != 1 {
			t.Errorf("Traveler '%s' must get a single mode, but got %v", person, seen[person])
		}
		cached, _ := sel.Store().Get(person)
		if cached.Decisions != workers*repeats {
			t.Errorf("Traveler '%s' must have %d decisions, but got %d", person, workers*repeats, cached.Decisions)
		}
	}
}
