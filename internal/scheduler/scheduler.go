package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/config"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/deadstock"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron    *cron.Cron
	deadSvc *deadstock.Service
	cfg     config.Config
	logger  *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, deadSvc *deadstock.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Register.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to local", zap.String("timezone", cfg.Register.Timezone))
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:    c,
		deadSvc: deadSvc,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Register.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Register.CronSchedule, s.repairDeadStock); err != nil {
		s.logger.Error("failed to schedule dead stock repair", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) repairDeadStock() {
	s.logger.Info("running dead stock repair sweep")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.deadSvc.Repair(ctx); err != nil {
		s.logger.Error("dead stock repair sweep failed", zap.Error(err))
	}
}
