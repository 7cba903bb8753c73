package main

import (
	"context"
	"fmt"
	"time"

	"github.com/LdDl/multimodal"
	"github.com/LdDl/multimodal/internal/decisiondb"
	"github.com/LdDl/multimodal/internal/logging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newChooseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "choose",
		Short: "Run mode choice for every trip of the population",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dbPath, _ := cmd.Flags().GetString("decisions-db"); dbPath != "" {
				cfg.Decisions.DatabasePath = dbPath
			}
			if cfg.Inputs.Population == "" {
				return fmt.Errorf("Population file is not configured")
			}
			iterations, _ := cmd.Flags().GetInt("iterations")
			if iterations < 1 {
				return fmt.Errorf("Number of iterations must be positive, but got %d", iterations)
			}
			warmStart, _ := cmd.Flags().GetString("warm-start")

			fmt.Printf("Reading population '%s'...", cfg.Inputs.Population)
			st := time.Now()
			persons, err := multimodal.LoadPopulation(cfg.Inputs.Population)
			if err != nil {
				return err
			}
			fmt.Printf("Done in %v\n\tPersons: %d\n", time.Since(st), len(persons))

			runID := uuid.New().String()
			decisionLogger := logging.NewDecisionLogger(cfg.Logging.Dir, cfg.Logging.Level, runID)
			defer decisionLogger.Close()

			selectorCfg := cfg.SelectorConfig()
			logger.Debug("selector configured", "run_id", runID, "config", selectorCfg.String())
			selector := multimodal.NewModeChoiceSelector(
				selectorCfg,
				multimodal.WithLogger(logger.With("run_id", runID)),
				multimodal.WithDecisionHook(decisionLogger.Log),
			)

			var db *decisiondb.DB
			if cfg.Decisions.DatabasePath != "" {
				db, err = decisiondb.Open(cfg.Decisions.DatabasePath)
				if err != nil {
					return err
				}
				defer db.Close()
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if warmStart != "" {
				if db == nil {
					return fmt.Errorf("Warm start requires decisions database")
				}
				records, err := db.LoadSnapshot(ctx, warmStart)
				if err != nil {
					return errors.Wrap(err, "Can't load warm start snapshot")
				}
				selector.Store().Restore(decisiondb.ToSnapshot(records))
				fmt.Printf("Warm start from run '%s': %d decisions\n", warmStart, len(records))
			}

			fmt.Printf("Choosing modes (threads = %d, iterations = %d)...", cfg.Threads, iterations)
			st = time.Now()
			for i := 0; i < iterations; i++ {
				err = runSelector(ctx, selector, persons, cfg.Threads)
				if err != nil {
					return err
				}
			}
			fmt.Printf("Done in %v\n", time.Since(st))

			stats := selector.Stats()
			fmt.Printf("Run '%s':\n\tQueries: %d\n\tTrain: %d\n\tAirplane: %d\n\tReused: %d\n\tFallback: %d\n\tTravelers cached: %d\n",
				runID, stats.Queries, stats.Train, stats.Airplane, stats.Reused, stats.Fallback, selector.Store().Len())

			if db != nil {
				records := decisiondb.FromSnapshot(selector.Store().Snapshot())
				err = db.SaveSnapshot(ctx, runID, records)
				if err != nil {
					return errors.Wrap(err, "Can't save decisions")
				}
				fmt.Printf("Saved %d decisions to '%s'\n", len(records), cfg.Decisions.DatabasePath)
			}
			return nil
		},
	}
	cmd.Flags().String("decisions-db", "", "SQLite file to store decisions in (overrides configuration)")
	cmd.Flags().String("warm-start", "", "Identifier of stored run to restore decisions from")
	cmd.Flags().Int("iterations", 1, "Number of times every trip is decided (emulates replanning iterations)")
	return cmd
}

// runSelector decides every trip of every person. Trips of a single person are handled by one worker in order
func runSelector(ctx context.Context, selector *multimodal.ModeChoiceSelector, persons []multimodal.Person, threads int) error {
	if threads < 1 {
		threads = 1
	}
	jobs := make(chan multimodal.Person)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for _, person := range persons {
			select {
			case jobs <- person:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			for person := range jobs {
				for _, trip := range person.Trips {
					selector.Select(person.ID, trip)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
