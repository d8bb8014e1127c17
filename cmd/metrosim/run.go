package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"metrosim/internal/config"
	"metrosim/internal/engine"
)

var (
	runStatePath        string
	runAgentCount        int
	runMaxDepth          uint32
	runTileSize          uint32
	runPeoplePerSim      uint32
	runHousingDensity    uint32
	runWorkplaceDensity  uint32
	runSeed1, runSeed2   uint64
	runPoolSize          int
	runTickSeconds       float64
	runBudgetSeconds     float64
	runDumpEvery         time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load or bootstrap a city and advance it in a loop until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadOrBootstrap()
		if err != nil {
			return err
		}
		defer e.Close()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

		tick := time.NewTicker(time.Duration(runTickSeconds * float64(time.Second)))
		defer tick.Stop()
		dump := time.NewTicker(runDumpEvery)
		defer dump.Stop()

		log.Info().Str("state", runStatePath).Uint64("time", e.Time.CurrentTime).Msg("metrosim: simulation running")
		for {
			select {
			case <-tick.C:
				if err := e.Update(runTickSeconds, runBudgetSeconds); err != nil {
					return err
				}
				log.Debug().Uint64("time", e.Time.CurrentTime).Int("pending", e.Queue.Len()).Msg("metrosim: tick")
			case <-dump.C:
				if err := e.DumpFile(runStatePath); err != nil {
					return err
				}
				log.Info().Str("state", runStatePath).Msg("metrosim: state dumped")
			case <-sig:
				log.Info().Msg("metrosim: shutting down, dumping final state")
				return e.DumpFile(runStatePath)
			}
		}
	},
}

// loadOrBootstrap loads an existing state dump at runStatePath, or
// synthesizes a fresh city if none exists yet.
func loadOrBootstrap() (*engine.Engine, error) {
	data, err := os.ReadFile(runStatePath)
	switch {
	case err == nil:
		log.Info().Str("state", runStatePath).Msg("metrosim: loading existing state")
		return engine.Load(data, runPoolSize, runSeed1, runSeed2)
	case !os.IsNotExist(err):
		return nil, err
	}

	cfg := config.Config{MaxDepth: runMaxDepth, MinTileSize: runTileSize, PeoplePerSim: runPeoplePerSim}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Int("agents", runAgentCount).Msg("metrosim: no existing state found, bootstrapping a fresh city")
	return bootstrapEngine(bootstrapParams{
		Config:           cfg,
		AgentCount:       runAgentCount,
		HousingDensity:   runHousingDensity,
		WorkplaceDensity: runWorkplaceDensity,
		Seed1:            runSeed1,
		Seed2:            runSeed2,
		PoolSize:         runPoolSize,
	})
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runStatePath, "state", "metrosim.json", "Path to the simulation state dump")
	runCmd.Flags().IntVar(&runAgentCount, "agents", 2000, "Number of residents to seed when bootstrapping a fresh city")
	runCmd.Flags().Uint32Var(&runMaxDepth, "max-depth", 8, "Quadtree max depth when bootstrapping a fresh city")
	runCmd.Flags().Uint32Var(&runTileSize, "tile-size", 25, "Meters per smallest tile when bootstrapping a fresh city")
	runCmd.Flags().Uint32Var(&runPeoplePerSim, "people-per-sim", 50, "Real people represented per simulated agent")
	runCmd.Flags().Uint32Var(&runHousingDensity, "housing-density", 4, "Agents per Housing tile when bootstrapping a fresh city")
	runCmd.Flags().Uint32Var(&runWorkplaceDensity, "workplace-density", 6, "Agents per Workplace tile when bootstrapping a fresh city")
	runCmd.Flags().Uint64Var(&runSeed1, "seed1", 1, "First PRNG seed word")
	runCmd.Flags().Uint64Var(&runSeed2, "seed2", 2, "Second PRNG seed word")
	runCmd.Flags().IntVar(&runPoolSize, "pool-size", 4, "Route-planning worker pool size")
	runCmd.Flags().Float64Var(&runTickSeconds, "tick-seconds", 1.0, "Real seconds between Update calls")
	runCmd.Flags().Float64Var(&runBudgetSeconds, "tick-budget-seconds", 0.5, "Wall-clock budget per Update call's trigger drain")
	runCmd.Flags().DurationVar(&runDumpEvery, "dump-every", 30*time.Second, "How often to write the state dump to disk")
}
