package application

import (
	"sync"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
)

type State struct {
	mu        sync.Mutex
	creds     *domain.Credentials
	monitored []domain.MonitoredPipeline
	interval  time.Duration
	last      *domain.OverallStatus
}

func NewState(creds *domain.Credentials, monitored []domain.MonitoredPipeline, interval time.Duration) *State {
	s := &State{interval: interval}
	s.SetCredentials(creds)
	s.SetMonitored(monitored)
	return s
}

func (s *State) Targets() (*domain.Credentials, []domain.MonitoredPipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var creds *domain.Credentials
	if s.creds != nil {
		c := *s.creds
		creds = &c
	}
	out := make([]domain.MonitoredPipeline, len(s.monitored))
	copy(out, s.monitored)
	return creds, out
}

func (s *State) SetCredentials(c *domain.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.creds = nil
		return
	}
	cp := *c
	s.creds = &cp
}

func (s *State) SetMonitored(m []domain.MonitoredPipeline) {
	cp := make([]domain.MonitoredPipeline, len(m))
	copy(cp, m)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitored = cp
}

func (s *State) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *State) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
}

func (s *State) LastStatus() *domain.OverallStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	st := *s.last
	return &st
}

// swapStatus stores next and returns the snapshot it replaced. Concurrent
// cycles race here and the last writer wins.
func (s *State) swapStatus(next domain.OverallStatus) *domain.OverallStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.last
	s.last = &next
	return prev
}
