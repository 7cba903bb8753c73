package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/LdDl/multimodal"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route <from-node> <to-node>",
		Short: "Find shortest path between two nodes of merged network for single mode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			modeText, _ := cmd.Flags().GetString("mode")
			mode, err := multimodal.ParseTransportMode(modeText)
			if err != nil {
				return err
			}
			scenario, err := assembleScenario(cfg, logger)
			if err != nil {
				return err
			}

			fmt.Printf("Building graph for mode '%s'...", mode)
			st := time.Now()
			graph, err := multimodal.BuildModeGraph(scenario.Network, mode)
			if err != nil {
				return errors.Wrap(err, "Can't build routing graph")
			}
			fmt.Printf("Done in %v\n\tVertices: %d\n\tEdges: %d\n", time.Since(st), graph.VerticesNum(), graph.EdgesNum())

			fmt.Printf("Starting contraction process...")
			fmt.Printf("Done in %v\n", graph.Prepare())

			from, to := multimodal.NetworkNodeID(args[0]), multimodal.NetworkNodeID(args[1])
			cost, path, err := graph.ShortestPath(from, to)
			if err != nil {
				return err
			}
			links, err := graph.PathLinks(path)
			if err != nil {
				return err
			}
			nodes := make([]string, len(path))
			for i, id := range path {
				nodes[i] = string(id)
			}
			fmt.Printf("Cost: %f\nNodes: %s\nLinks: %d\n", cost, strings.Join(nodes, ","), len(links))
			return nil
		},
	}
	cmd.Flags().String("mode", "car", "Transport mode of the path")
	return cmd
}
