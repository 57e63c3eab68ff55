package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure RetentionService implements the interface.
var _ driving.MaintenanceService = (*RetentionService)(nil)

// Default retention parameters.
const (
	DefaultRetentionDays = 30
	defaultCheckInterval = 1 * time.Hour
)

// RetentionService deletes chat messages older than the retention
// window, then removes sessions left empty. It never touches the
// knowledge index.
type RetentionService struct {
	chats         driven.ChatStore
	retentionDays int
}

// NewRetentionService creates a retention service. days <= 0 takes the
// default window.
func NewRetentionService(chats driven.ChatStore, days int) *RetentionService {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	return &RetentionService{chats: chats, retentionDays: days}
}

// CleanupChats runs one retention pass. Returns how many messages and
// sessions were deleted.
func (s *RetentionService) CleanupChats(ctx context.Context) (int64, int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	messages, err := s.chats.DeleteMessagesBefore(ctx, cutoff)
	if err != nil {
		return 0, 0, err
	}

	sessions, err := s.chats.DeleteEmptySessions(ctx)
	if err != nil {
		return messages, 0, err
	}

	if messages > 0 || sessions > 0 {
		logger.Info("Retention pass removed %d messages and %d empty sessions", messages, sessions)
	}
	return messages, sessions, nil
}

// Scheduler runs maintenance on a fixed interval in the background.
type Scheduler struct {
	maintenance driving.MaintenanceService
	interval    time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. interval <= 0 takes the default
// check interval.
func NewScheduler(maintenance driving.MaintenanceService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &Scheduler{maintenance: maintenance, interval: interval}
}

// Start begins the background loop. Returns immediately; the first pass
// runs straight away, then every interval until Stop or ctx cancel.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop shuts down the loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.pass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

func (s *Scheduler) pass(ctx context.Context) {
	if _, _, err := s.maintenance.CleanupChats(ctx); err != nil {
		logger.Error("Scheduled retention pass failed: %v", err)
	}
}
