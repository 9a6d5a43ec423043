package service

import (
	"context"
	"log"
	"sync"
	"time"

	"fieldstock-api/internal/repository"
)

// CleanupConfig holds configuration for the cleanup scheduler.
type CleanupConfig struct {
	// RetentionAge is how long import audit records are kept.
	// Default: 90 days
	RetentionAge time.Duration

	// CleanupInterval is how often the cleanup runs.
	// Default: 24 hours
	CleanupInterval time.Duration
}

// DefaultCleanupConfig returns default cleanup configuration.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionAge:    90 * 24 * time.Hour,
		CleanupInterval: 24 * time.Hour,
	}
}

// CleanupScheduler runs periodic purges of import audit records past the
// retention window.
type CleanupScheduler struct {
	repo      repository.ImportLogRepository
	config    CleanupConfig
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewCleanupScheduler creates a new cleanup scheduler.
func NewCleanupScheduler(repo repository.ImportLogRepository, config CleanupConfig) *CleanupScheduler {
	if config.RetentionAge == 0 {
		config.RetentionAge = 90 * 24 * time.Hour
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 24 * time.Hour
	}

	return &CleanupScheduler{
		repo:   repo,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start begins the cleanup scheduler.
func (s *CleanupScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.CleanupInterval)
	s.mu.Unlock()

	log.Printf("[CleanupScheduler] Started - Interval: %v, Retention: %v",
		s.config.CleanupInterval, s.config.RetentionAge)

	// Run initial cleanup after a short delay
	go func() {
		time.Sleep(1 * time.Minute) // Wait 1 minute after startup
		s.runCleanup()
	}()

	go s.run()
}

// run is the main cleanup loop.
func (s *CleanupScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.runCleanup()
		case <-s.stopCh:
			log.Printf("[CleanupScheduler] Stopped")
			return
		}
	}
}

// runCleanup performs the actual purge.
func (s *CleanupScheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.config.RetentionAge)
	log.Printf("[CleanupScheduler] Purging import logs older than %v", cutoff.Format(time.RFC3339))

	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[CleanupScheduler] Error during cleanup: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("[CleanupScheduler] Purged %d import log records", deleted)
	} else {
		log.Printf("[CleanupScheduler] No import logs past retention")
	}
}

// Stop stops the cleanup scheduler.
func (s *CleanupScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}

// RunNow triggers an immediate purge and returns how many records went.
func (s *CleanupScheduler) RunNow() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	return s.repo.DeleteOlderThan(ctx, time.Now().Add(-s.config.RetentionAge))
}
