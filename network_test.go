package multimodal

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

func TestNetworkAddErrors(t *testing.T) {
	net := testNetwork(t, "road", "r", 2, MODE_CAR)
	err := net.AddNode(&NetworkNode{ID: "r0"})
	var dupErr *DuplicateIdentifierError
	if !errors.As(err, &dupErr) || dupErr.Kind != ENTITY_NODE {
		t.Errorf("Duplicate node must give DuplicateIdentifierError, but got %v", err)
	}
	err = net.AddLink(&NetworkLink{ID: "r_new", SourceNodeID: "r0", TargetNodeID: "r9"})
	var danglingErr *DanglingReferenceError
	if !errors.As(err, &danglingErr) || danglingErr.RefID != "r9" {
		t.Errorf("Link to unknown node must give DanglingReferenceError, but got %v", err)
	}
}

func TestNetworkClone(t *testing.T) {
	net := testNetwork(t, "road", "r", 3, MODE_CAR)
	cloned := net.Clone()
	link, _ := cloned.Link("r0_1_f")
	link.AllowedModes[MODE_TRAIN] = struct{}{}
	link.Capacity = 1

	original, _ := net.Link("r0_1_f")
	if original.AllowedModes.Contains(MODE_TRAIN) || original.Capacity != 1000 {
		t.Error("Changes of cloned link must not affect original network")
	}
	if err := cloned.AddNode(&NetworkNode{ID: "extra"}); err != nil {
		t.Fatal(err)
	}
	if net.NodesNum() != 3 {
		t.Errorf("Number of nodes of original network must be %d, but got %d", 3, net.NodesNum())
	}
}

func TestNetworkExportToCSV(t *testing.T) {
	net := testNetwork(t, "road", "r", 3, MODE_CAR)
	dir := t.TempDir()
	err := net.ExportToCSV(filepath.Join(dir, "road.csv"))
	if err != nil {
		t.Fatal(err)
	}
	for fname, rows := range map[string]int{"road_nodes.csv": 3 + 1, "road_links.csv": 4 + 1} {
		file, err := os.Open(filepath.Join(dir, fname))
		if err != nil {
			t.Fatal(err)
		}
		reader := csv.NewReader(file)
		reader.Comma = ';'
		records, err := reader.ReadAll()
		file.Close()
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != rows {
			t.Errorf("Number of rows in '%s' must be %d, but got %d", fname, rows, len(records))
		}
	}
}

func TestNetworkExportToGeoJSON(t *testing.T) {
	net := testNetwork(t, "road", "r", 3, MODE_CAR)
	buf := bytes.Buffer{}
	err := net.ExportToGeoJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 4 {
		t.Fatalf("Number of features must be %d, but got %d", 4, len(fc.Features))
	}
	for _, feature := range fc.Features {
		if !feature.Geometry.IsLineString() || len(feature.Geometry.LineString) != 2 {
			t.Errorf("Feature '%v' must be two-point LineString", feature.ID)
		}
		if modes, _ := feature.PropertyString("allowed_modes"); modes != "car" {
			t.Errorf("Allowed modes must be '%s', but got '%s'", "car", modes)
		}
	}
}
