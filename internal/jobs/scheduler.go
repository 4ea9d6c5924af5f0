package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AtoyanMikhail/blogauth/internal/config"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
)

const (
	unconfirmedBatch = 1000
	jobTimeout       = time.Minute
)

type BlacklistPurger interface {
	Purge(ctx context.Context, now time.Time) (int64, error)
}

type UnconfirmedCleaner interface {
	DeleteExpiredUnconfirmed(ctx context.Context, now time.Time, limit int) (int64, error)
}

type MailDispatcher interface {
	DispatchPending(ctx context.Context, limit int) (int, error)
}

// Scheduler runs periodic maintenance: purging expired blacklist rows, deleting users who
// never confirmed their email, and delivering queued mail.
type Scheduler struct {
	cron      *cron.Cron
	cfg       config.JobsConfig
	batchSize int
	blacklist BlacklistPurger
	users     UnconfirmedCleaner
	mail      MailDispatcher
	log       logger.Logger
	now       func() time.Time
}

func NewScheduler(
	cfg config.JobsConfig,
	mailBatch int,
	blacklist BlacklistPurger,
	users UnconfirmedCleaner,
	mail MailDispatcher,
	log logger.Logger,
) *Scheduler {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{
		cron:      c,
		cfg:       cfg,
		batchSize: mailBatch,
		blacklist: blacklist,
		users:     users,
		mail:      mail,
		log:       log,
		now:       time.Now,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CleanupSpec, s.run("cleanup", s.Cleanup)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.MailSpec, s.run("mail", s.DispatchMail)); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Scheduler started",
		logger.String("cleanup_spec", s.cfg.CleanupSpec),
		logger.String("mail_spec", s.cfg.MailSpec))
	return nil
}

// Stop waits for running jobs up to the deadline of ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stopped before jobs finished")
	}
}

func (s *Scheduler) run(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := job(ctx); err != nil {
			s.log.Error("Scheduled job failed", logger.String("job", name), logger.Error(err))
		}
	}
}

func (s *Scheduler) Cleanup(ctx context.Context) error {
	now := s.now()

	purged, err := s.blacklist.Purge(ctx, now)
	if err != nil {
		return err
	}

	deleted, err := s.users.DeleteExpiredUnconfirmed(ctx, now, unconfirmedBatch)
	if err != nil {
		return err
	}

	if purged > 0 || deleted > 0 {
		s.log.Info("Cleanup finished",
			logger.Int64("blacklist_purged", purged),
			logger.Int64("unconfirmed_deleted", deleted))
	}
	return nil
}

func (s *Scheduler) DispatchMail(ctx context.Context) error {
	sent, err := s.mail.DispatchPending(ctx, s.batchSize)
	if sent > 0 {
		s.log.Debug("Mail dispatched", logger.Int("sent", sent))
	}
	return err
}
