// Command metrosim runs the urban mobility simulation: load or bootstrap
// a city, advance it, and inspect its state.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "metrosim",
	Short: "Discrete-event agent-based urban mobility simulator",
}

func init() {
	var logFormat string
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: 'json' or 'console'")
	cobra.OnInitialize(func() {
		if logFormat == "json" {
			log.Logger = log.Output(os.Stderr)
			return
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	})
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("metrosim failed")
	}
}
