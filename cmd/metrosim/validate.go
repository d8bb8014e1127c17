package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"metrosim/internal/consistency"
	"metrosim/internal/engine"
)

var validateStatePath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load a state dump and check agent/tile cross-references for consistency",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(validateStatePath)
		if err != nil {
			return err
		}
		e, err := engine.Load(data, 1, 1, 2)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := runConsistencyCheck(e); err != nil {
			return err
		}
		log.Info().Str("state", validateStatePath).Int("agents", len(e.Agents)).Msg("metrosim: state is consistent")
		return nil
	},
}

// runConsistencyCheck runs consistency.Check and converts its panic (an
// internal-invariant violation, not a recoverable condition from that
// package's own point of view) into a plain CLI error.
func runConsistencyCheck(e *engine.Engine) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("metrosim: consistency check failed: %v", r)
		}
	}()
	consistency.Check(e.World, e.Agents)
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateStatePath, "state", "metrosim.json", "Path to the simulation state dump to validate")
}
