package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LdDl/multimodal"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newImportOSMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-osm <file.osm|file.osm.pbf>",
		Short: "Import road network from OSM file and export it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, _ := cmd.Flags().GetString("tags")
			prefix, _ := cmd.Flags().GetString("id-prefix")
			out, _ := cmd.Flags().GetString("out")
			geojsonOut, _ := cmd.Flags().GetString("geojson")

			options := []func(*multimodal.Parser){
				multimodal.WithVerbose(true),
				multimodal.WithIDPrefix(prefix),
			}
			if tags != "" {
				options = append(options, multimodal.WithHighwayTags(strings.Split(tags, ",")))
			}
			parser := multimodal.NewParser(args[0], options...)
			fmt.Println(parser)

			net, err := parser.ImportRoadNetwork()
			if err != nil {
				return err
			}

			fmt.Printf("Exporting network to CSV '%s'...", out)
			st := time.Now()
			err = net.ExportToCSV(out)
			if err != nil {
				return errors.Wrap(err, "Can't export network to CSV")
			}
			fmt.Printf("Done in %v\n", time.Since(st))

			if geojsonOut != "" {
				file, err := os.Create(geojsonOut)
				if err != nil {
					return errors.Wrap(err, "Can't create GeoJSON file")
				}
				defer file.Close()
				err = net.ExportToGeoJSON(file)
				if err != nil {
					return errors.Wrap(err, "Can't export network to GeoJSON")
				}
			}
			return nil
		},
	}
	cmd.Flags().String("tags", "", "Comma separated values of 'highway' tag to import (default: motorway..secondary_link)")
	cmd.Flags().String("id-prefix", "", "Prefix of node and link identifiers")
	cmd.Flags().String("out", "road.csv", "Output CSV: '<name>_nodes.csv' and '<name>_links.csv' are written for '<name>.csv'")
	cmd.Flags().String("geojson", "", "Optional GeoJSON output of links")
	return cmd
}
