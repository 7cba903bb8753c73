package multimodal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type PersonID string

// TripContext is everything the selector knows about a single trip
type TripContext struct {
	// Trip origin and destination. Nil when unknown
	Origin      *orb.Point
	Destination *orb.Point
	// Long-distance modes the router may use for the trip
	Candidates    ModeSet
	DepartureTime time.Duration
}

func (trip TripContext) String() string {
	origin, destination := "-", "-"
	if trip.Origin != nil {
		origin = fmt.Sprintf("(%f, %f)", trip.Origin.X(), trip.Origin.Y())
	}
	if trip.Destination != nil {
		destination = fmt.Sprintf("(%f, %f)", trip.Destination.X(), trip.Destination.Y())
	}
	return fmt.Sprintf("%s -> %s at %s [%s]", origin, destination, formatClockTime(trip.DepartureTime), trip.Candidates)
}

// Person is a demand unit: identifier and its trips in order of execution
type Person struct {
	ID    PersonID
	Trips []TripContext
}

var populationHeader = []string{"person_id", "origin_x", "origin_y", "destination_x", "destination_y", "modes", "departure_time"}

// ReadPopulationCSV reads trips from ';'-separated file with header:
//
//	person_id;origin_x;origin_y;destination_x;destination_y;modes;departure_time
//
// Rows of the same person are grouped in order of appearance. Empty coordinate cells give nil points.
// Empty modes cell means both train and airplane are candidates.
func ReadPopulationCSV(r io.Reader) ([]Person, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = len(populationHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read header")
	}
	for i := range populationHeader {
		if strings.TrimSpace(header[i]) != populationHeader[i] {
			return nil, fmt.Errorf("Unexpected column '%s' at position %d, expected '%s'", header[i], i, populationHeader[i])
		}
	}

	persons := []Person{}
	index := make(map[PersonID]int)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "Can't read row %d", line)
		}
		personID := PersonID(strings.TrimSpace(record[0]))
		if personID == "" {
			return nil, fmt.Errorf("Empty person id at row %d", line)
		}
		origin, err := parseOptionalPoint(record[1], record[2])
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse origin at row %d", line)
		}
		destination, err := parseOptionalPoint(record[3], record[4])
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse destination at row %d", line)
		}
		candidates, err := ParseModeSet(record[5])
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse modes at row %d", line)
		}
		if candidates.Len() == 0 {
			candidates = NewModeSet(MODE_TRAIN, MODE_AIRPLANE)
		}
		departure, err := parseClockTime(record[6])
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse departure time at row %d", line)
		}
		trip := TripContext{
			Origin:        origin,
			Destination:   destination,
			Candidates:    candidates,
			DepartureTime: departure,
		}
		idx, ok := index[personID]
		if !ok {
			idx = len(persons)
			index[personID] = idx
			persons = append(persons, Person{ID: personID})
		}
		persons[idx].Trips = append(persons[idx].Trips, trip)
	}
	return persons, nil
}

func parseOptionalPoint(xStr, yStr string) (*orb.Point, error) {
	xStr, yStr = strings.TrimSpace(xStr), strings.TrimSpace(yStr)
	if xStr == "" || yStr == "" {
		return nil, nil
	}
	x, err := strconv.ParseFloat(xStr, 64)
	if err != nil {
		return nil, err
	}
	y, err := strconv.ParseFloat(yStr, 64)
	if err != nil {
		return nil, err
	}
	return &orb.Point{x, y}, nil
}
