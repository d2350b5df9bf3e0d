package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler re-fetches the catalog on a fixed cadence so drift in the
// static product document shows up in the logs instead of surprising the
// next category render.
type Scheduler struct {
	cron        *cron.Cron
	ctx         context.Context
	cancel      context.CancelFunc
	refreshFunc func(ctx context.Context) error
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) SetRefreshFunction(f func(ctx context.Context) error) {
	s.refreshFunc = f
}

func (s *Scheduler) Start() error {
	if s.refreshFunc == nil {
		log.Println("refresh function not set, catalog scheduler idle")
		return nil
	}

	// Daily at 06:00 UTC, well before peak traffic.
	_, err := s.cron.AddFunc("0 6 * * *", func() {
		if err := s.refreshFunc(s.ctx); err != nil {
			log.Printf("scheduled catalog refresh failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("catalog refresh scheduled daily at 06:00 UTC")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
}
