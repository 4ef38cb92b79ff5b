package application

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"go.uber.org/zap"
)

const DefaultInitialDelay = 2 * time.Second

type Scheduler struct {
	log       *zap.Logger
	use       *PollUseCase
	state     *State
	pauseFile string

	InitialDelay time.Duration

	refresh chan struct{}
	wg      sync.WaitGroup
}

func NewScheduler(l *zap.Logger, u *PollUseCase, state *State, pauseFile string) *Scheduler {
	return &Scheduler{
		log: l, use: u, state: state, pauseFile: pauseFile,
		InitialDelay: DefaultInitialDelay,
		refresh:      make(chan struct{}, 1),
	}
}

// Trigger never blocks; requests arriving while one is queued are folded into it.
func (s *Scheduler) Trigger() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Reload(creds *domain.Credentials, targets []domain.MonitoredPipeline, every time.Duration) {
	s.state.SetCredentials(creds)
	s.state.SetMonitored(targets)
	if every > 0 {
		s.state.SetInterval(every)
	}
	s.log.Info("config reloaded",
		zap.Int("pipelines", len(targets)),
		zap.Duration("every", s.state.Interval()),
	)
}

// Timer cycles are sequential; manual refreshes may overlap them.
func (s *Scheduler) Run(ctx context.Context) {
	served := make(chan struct{})
	go func() {
		defer close(served)
		s.serveRefresh(ctx)
	}()
	stop := func() {
		<-served
		s.wg.Wait()
	}

	select {
	case <-ctx.Done():
		stop()
		return
	case <-time.After(s.InitialDelay):
	}

	s.tick(ctx)

	t := time.NewTimer(s.state.Interval())
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-t.C:
			s.tick(ctx)
			t.Reset(s.state.Interval())
		}
	}
}

func (s *Scheduler) serveRefresh(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.refresh:
			s.log.Info("manual refresh triggered")
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.use.CheckOnce(ctx)
			}()
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.isPaused() {
		s.log.Debug("paused: skipping poll")
		return
	}
	s.use.CheckOnce(ctx)
}

func (s *Scheduler) isPaused() bool {
	if s.pauseFile == "" {
		return false
	}
	_, err := os.Stat(s.pauseFile)
	return err == nil
}
