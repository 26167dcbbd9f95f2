// Package scheduler runs the periodic recommendation refresh on robfig/cron.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unimarket/internal/pkg/logger"
	"unimarket/internal/usecase/recommendation"

	"github.com/robfig/cron/v3"
)

type Refresher interface {
	Refresh(ctx context.Context, trigger string) (recommendation.RefreshResult, error)
}

type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
	logger    logger.Logger
}

// New returns a scheduler for spec. An empty spec yields a scheduler whose
// Start is a no-op.
func New(spec string, refresher Refresher, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.String("component", "scheduler"))
	cl := cronLogger{log: log}
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		refresher: refresher,
		spec:      strings.TrimSpace(spec),
		logger:    log,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.spec == "" {
		s.logger.Info("recommendation cron disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, func() { s.runRefresh(ctx) }); err != nil {
		return fmt.Errorf("schedule recommendation refresh %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("cron started", logger.String("spec", s.spec))
	return nil
}

// Stop waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron stopped")
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	res, err := s.refresher.Refresh(ctx, "cron")
	if err != nil {
		if errors.Is(err, recommendation.ErrRefreshInProgress) {
			s.logger.Info("recommendation refresh skipped, another run holds the lock")
			return
		}
		s.logger.Error("recommendation refresh failed", logger.Error(err))
		return
	}
	s.logger.Debug("recommendation refresh finished", logger.Int("users", res.Users), logger.Int("jobs", res.Jobs))
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(fields(keysAndValues), logger.Error(err))...)
}

func fields(kv []interface{}) []logger.Field {
	out := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		out = append(out, logger.Any(key, kv[i+1]))
	}
	return out
}
