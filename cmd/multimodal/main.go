package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/LdDl/multimodal"
	"github.com/LdDl/multimodal/internal/config"
	"github.com/LdDl/multimodal/internal/logging"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	rootCmd := &cobra.Command{
		Use:   "multimodal",
		Short: "Multimodal scenario preparation",
		Long: `multimodal merges road, rail and air datasets into a single network,
transit schedule and vehicle fleet, and chooses between train and airplane
routing parameters for long-distance travelers.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides configuration)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAssembleCmd(),
		newChooseCmd(),
		newRouteCmd(),
		newImportOSMCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("multimodal version %s\n", version)
		},
	}
}

// loadConfig reads configuration given by persistent flags and prepares logger
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "Invalid configuration")
	}
	return cfg, logging.NewLogger(cfg.Logging.Level, os.Stderr), nil
}

// loadRoadNetwork reads road network either from OSM file or from engine network file
func loadRoadNetwork(fname string, verbose bool) (*multimodal.Network, error) {
	lower := strings.ToLower(fname)
	if strings.HasSuffix(lower, ".pbf") || filepath.Ext(lower) == ".osm" {
		parser := multimodal.NewParser(fname, multimodal.WithVerbose(verbose))
		return parser.ImportRoadNetwork()
	}
	return multimodal.LoadNetwork(fname)
}

// assembleScenario reads every configured dataset and merges them into the road one
func assembleScenario(cfg *config.Config, logger *slog.Logger, options ...func(*multimodal.ModeChoiceSelector)) (*multimodal.Scenario, error) {
	roadNetwork, err := loadRoadNetwork(cfg.Inputs.RoadNetwork, cfg.Logging.Level != "info")
	if err != nil {
		return nil, errors.Wrap(err, "Can't load road network")
	}
	base := multimodal.ModeDataset{Name: "road", Mode: multimodal.MODE_CAR, Network: roadNetwork}

	train, err := multimodal.LoadModeDataset("train", multimodal.MODE_TRAIN, cfg.Inputs.TrainNetwork, cfg.Inputs.TrainSchedule, cfg.Inputs.TrainVehicles)
	if err != nil {
		return nil, errors.Wrap(err, "Can't load train dataset")
	}
	airplane, err := multimodal.LoadModeDataset("airplane", multimodal.MODE_AIRPLANE, cfg.Inputs.AirplaneNetwork, cfg.Inputs.AirplaneSchedule, cfg.Inputs.AirplaneVehicles)
	if err != nil {
		return nil, errors.Wrap(err, "Can't load airplane dataset")
	}

	assemblyCfg := multimodal.AssemblyConfig{
		ValidateReferences: true,
		Selector:           cfg.SelectorConfig(),
		SelectorOptions:    options,
		Logger:             logger,
	}
	return multimodal.Assemble(assemblyCfg, base, train, airplane)
}
