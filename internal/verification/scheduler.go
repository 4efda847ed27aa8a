package verification

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderScheduler periodically sweeps for verifications stuck in manual
// review and nudges the compliance inbox.
type ReminderScheduler struct {
	cron    *cron.Cron
	service Service
	logger  *zap.Logger
}

func NewReminderScheduler(service Service, logger *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		cron:    cron.New(),
		service: service,
		logger:  logger,
	}
}

// Start registers the sweep on the given cron schedule (e.g. "0 9 * * *").
func (s *ReminderScheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.service.SendReviewReminders(ctx); err != nil {
			s.logger.Error("review reminder sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("review reminder scheduler started", zap.String("schedule", schedule))
	return nil
}

func (s *ReminderScheduler) Stop() {
	s.cron.Stop()
}
