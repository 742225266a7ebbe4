package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"forestpest/auth/internal/service"
)

// Cleaner is the maintenance surface of the auth service.
type Cleaner interface {
	CleanupExpiredBlacklistedTokens(ctx context.Context) (service.CleanupReport, error)
}

type Scheduler struct {
	cron     *cron.Cron
	cleaner  Cleaner
	schedule string
	timeout  time.Duration
	log      zerolog.Logger
}

// NewScheduler runs cleaner on schedule, a six-field cron spec with seconds.
func NewScheduler(cleaner Cleaner, schedule string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	return &Scheduler{
		cron:     c,
		cleaner:  cleaner,
		schedule: schedule,
		timeout:  time.Minute,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.log.Warn().Msg("cleanup schedule empty, periodic cleanup disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.runCleanup); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("cleanup scheduled")
	return nil
}

// Stop halts the schedule and waits for a running cleanup to return or for
// ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("cleanup still running at shutdown")
	}
}

func (s *Scheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.cleaner.CleanupExpiredBlacklistedTokens(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("token cleanup failed")
		return
	}
	if report.BlacklistRemoved > 0 || report.ResetTokensRemoved > 0 {
		s.log.Info().
			Int("blacklist_removed", report.BlacklistRemoved).
			Int("reset_removed", report.ResetTokensRemoved).
			Msg("token cleanup")
	}
}
