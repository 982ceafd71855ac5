package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartSweeper periodically re-evaluates stopped-in-place and collision
// state so transitions fire even when a train goes quiet.
func StartSweeper(orchestrator *Orchestrator) {
	interval := orchestrator.config.SweepInterval
	if interval <= 0 {
		log.Info().Msg("Sweeper disabled")
		return
	}

	log.Info().Str("interval", interval.String()).Msg("Starting sweeper")

	go func() {
		ticker := time.NewTicker(interval)
		for range ticker.C {
			if err := orchestrator.SweepActiveVehicles(context.Background()); err != nil {
				log.Error().Err(err).Msg("Sweep failed")
			}
		}
	}()
}
