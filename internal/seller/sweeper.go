package seller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper periodically flags orders that blew their fulfilment SLA: confirmed
// orders past the accept deadline and accepted orders past the dispatch
// deadline.
type Sweeper struct {
	db         *Database
	sweepDelay time.Duration
}

func NewSweeper(db *Database) *Sweeper {
	return &Sweeper{
		db:         db,
		sweepDelay: 5 * time.Minute,
	}
}

// NewSweeperForService builds a sweeper sharing the service's database layer.
func NewSweeperForService(s *Service) *Sweeper {
	return NewSweeper(s.db)
}

// Start begins the SLA sweep loop
func (s *Sweeper) Start(ctx context.Context) {
	logger := log.With().Str("component", "sla_sweeper").Logger()
	logger.Info().Msg("starting SLA sweeper")

	ticker := time.NewTicker(s.sweepDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down SLA sweeper")
			return
		case <-ticker.C:
			if err := s.sweepOverdueOrders(); err != nil {
				logger.Error().Err(err).Msg("failed to sweep overdue orders")
			}
		}
	}
}

func (s *Sweeper) sweepOverdueOrders() error {
	logger := log.With().Str("component", "sla_sweeper").Logger()

	flagged, err := s.db.FlagOverdueOrders(time.Now())
	if err != nil {
		return err
	}
	if flagged > 0 {
		logger.Warn().Int64("count", flagged).Msg("orders flagged as delayed")
	}

	return nil
}
