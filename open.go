package multimodal

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (gz *gzipFile) Close() error {
	gzErr := gz.Reader.Close()
	err := gz.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return err
}

// openInput opens plain or gzip compressed ('.gz' suffix) file
func openInput(fname string) (io.ReadCloser, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	if !strings.HasSuffix(strings.ToLower(fname), ".gz") {
		return file, nil
	}
	reader, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "Can't create gzip reader")
	}
	return &gzipFile{Reader: reader, file: file}, nil
}

// datasetName returns file name without directories and known extensions: 'data/rail_network.xml.gz' gives 'rail_network'
func datasetName(fname string) string {
	name := filepath.Base(fname)
	for _, ext := range []string{".gz", ".pbf", ".xml", ".osm", ".csv"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// LoadNetwork reads engine network file ('.xml' or '.xml.gz')
func LoadNetwork(fname string) (*Network, error) {
	reader, err := openInput(fname)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	net, err := ReadNetworkXML(reader, datasetName(fname))
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read network '%s'", fname)
	}
	return net, nil
}

// LoadSchedule reads engine transit schedule file ('.xml' or '.xml.gz')
func LoadSchedule(fname string) (*TransitSchedule, error) {
	reader, err := openInput(fname)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	schedule, err := ReadScheduleXML(reader, datasetName(fname))
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read transit schedule '%s'", fname)
	}
	return schedule, nil
}

// LoadVehicles reads engine vehicles file ('.xml' or '.xml.gz')
func LoadVehicles(fname string) (*VehicleFleet, error) {
	reader, err := openInput(fname)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	fleet, err := ReadVehiclesXML(reader, datasetName(fname))
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read vehicles '%s'", fname)
	}
	return fleet, nil
}

// LoadPopulation reads population CSV file ('.csv' or '.csv.gz')
func LoadPopulation(fname string) ([]Person, error) {
	reader, err := openInput(fname)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	persons, err := ReadPopulationCSV(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read population '%s'", fname)
	}
	return persons, nil
}

// LoadModeDataset reads network, schedule and vehicles of single mode. Empty file names are skipped
func LoadModeDataset(name string, mode TransportMode, networkFile, scheduleFile, vehiclesFile string) (ModeDataset, error) {
	dataset := ModeDataset{Name: name, Mode: mode}
	var err error
	if networkFile != "" {
		dataset.Network, err = LoadNetwork(networkFile)
		if err != nil {
			return dataset, err
		}
	}
	if scheduleFile != "" {
		dataset.Schedule, err = LoadSchedule(scheduleFile)
		if err != nil {
			return dataset, err
		}
	}
	if vehiclesFile != "" {
		dataset.Fleet, err = LoadVehicles(vehiclesFile)
		if err != nil {
			return dataset, err
		}
	}
	return dataset, nil
}
