package multimodal

import (
	"fmt"
	"sort"
	"strings"
)

type TransportMode uint16

const (
	MODE_CAR = TransportMode(iota + 1)
	MODE_PT
	MODE_TRAIN
	MODE_AIRPLANE
	MODE_WALK
	MODE_UNDEFINED = TransportMode(0)
)

func (iotaIdx TransportMode) String() string {
	if int(iotaIdx) >= len(transportModeNames) {
		return "undefined"
	}
	return transportModeNames[iotaIdx]
}

var (
	transportModeNames = [...]string{"undefined", "car", "pt", "train", "airplane", "walk"}

	transportModesByName = map[string]TransportMode{
		"car":      MODE_CAR,
		"pt":       MODE_PT,
		"train":    MODE_TRAIN,
		"airplane": MODE_AIRPLANE,
		"walk":     MODE_WALK,
		// Aliases met in engine inputs
		"rail":  MODE_TRAIN,
		"bus":   MODE_PT,
		"plane": MODE_AIRPLANE,
	}

	// Modes a transit route may declare
	transitRouteModes = map[TransportMode]struct{}{
		MODE_PT:       {},
		MODE_TRAIN:    {},
		MODE_AIRPLANE: {},
	}
)

// ParseTransportMode returns mode for its textual representation
func ParseTransportMode(str string) (TransportMode, error) {
	if mode, ok := transportModesByName[strings.ToLower(strings.TrimSpace(str))]; ok {
		return mode, nil
	}
	return MODE_UNDEFINED, fmt.Errorf("Unknown transport mode '%s'", str)
}

// IsTransitRouteMode checks if mode could be declared by transit route
func IsTransitRouteMode(mode TransportMode) bool {
	_, ok := transitRouteModes[mode]
	return ok
}

// ModeSet is a set of transport modes allowed on a link or considered for a trip
type ModeSet map[TransportMode]struct{}

// NewModeSet returns set containing given modes
func NewModeSet(modes ...TransportMode) ModeSet {
	set := make(ModeSet, len(modes))
	for _, mode := range modes {
		set[mode] = struct{}{}
	}
	return set
}

// ParseModeSet parses comma separated list of modes. Empty string gives empty set
func ParseModeSet(str string) (ModeSet, error) {
	set := make(ModeSet)
	for _, part := range strings.Split(str, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		mode, err := ParseTransportMode(part)
		if err != nil {
			return nil, err
		}
		set[mode] = struct{}{}
	}
	return set, nil
}

func (set ModeSet) Contains(mode TransportMode) bool {
	_, ok := set[mode]
	return ok
}

func (set ModeSet) Len() int {
	return len(set)
}

// Slice returns modes sorted by their enum value
func (set ModeSet) Slice() []TransportMode {
	modes := make([]TransportMode, 0, len(set))
	for mode := range set {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool {
		return modes[i] < modes[j]
	})
	return modes
}

func (set ModeSet) Equal(other ModeSet) bool {
	if len(set) != len(other) {
		return false
	}
	for mode := range set {
		if !other.Contains(mode) {
			return false
		}
	}
	return true
}

func (set ModeSet) Clone() ModeSet {
	cloned := make(ModeSet, len(set))
	for mode := range set {
		cloned[mode] = struct{}{}
	}
	return cloned
}

func (set ModeSet) String() string {
	modes := set.Slice()
	names := make([]string, len(modes))
	for i, mode := range modes {
		names[i] = mode.String()
	}
	return strings.Join(names, ",")
}
