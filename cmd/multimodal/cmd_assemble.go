package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newAssembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Merge configured datasets and print scenario statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st := time.Now()
			scenario, err := assembleScenario(cfg, logger)
			if err != nil {
				return err
			}
			stats := scenario.Stats()
			fmt.Printf("Scenario '%s' assembled in %v\n", scenario.RunID, time.Since(st))
			fmt.Printf("\tNodes: %d\n\tLinks: %d\n\tStop facilities: %d\n\tLines: %d\n\tRoutes: %d\n\tVehicle types: %d\n\tVehicles: %d\n",
				stats.Nodes, stats.Links, stats.StopFacilities, stats.Lines, stats.Routes, stats.VehicleTypes, stats.Vehicles)

			exportCSV, _ := cmd.Flags().GetString("export-csv")
			if exportCSV != "" {
				fmt.Printf("Exporting network to CSV '%s'...", exportCSV)
				st = time.Now()
				err = scenario.Network.ExportToCSV(exportCSV)
				if err != nil {
					return errors.Wrap(err, "Can't export network to CSV")
				}
				fmt.Printf("Done in %v\n", time.Since(st))
			}

			exportGeoJSON, _ := cmd.Flags().GetString("export-geojson")
			if exportGeoJSON != "" {
				fmt.Printf("Exporting network to GeoJSON '%s'...", exportGeoJSON)
				st = time.Now()
				file, err := os.Create(exportGeoJSON)
				if err != nil {
					return errors.Wrap(err, "Can't create GeoJSON file")
				}
				defer file.Close()
				err = scenario.Network.ExportToGeoJSON(file)
				if err != nil {
					return errors.Wrap(err, "Can't export network to GeoJSON")
				}
				fmt.Printf("Done in %v\n", time.Since(st))
			}
			return nil
		},
	}
	cmd.Flags().String("export-csv", "", "Export merged network into '<name>_nodes.csv' and '<name>_links.csv' for given '<name>.csv'")
	cmd.Flags().String("export-geojson", "", "Export merged network links into GeoJSON file")
	return cmd
}
