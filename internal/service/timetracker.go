package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"fieldstock-api/internal/model"
	"fieldstock-api/internal/repository"
	"fieldstock-api/pkg/uid"
)

// Time tracker errors surfaced to handlers.
var (
	ErrProjectRequired = errors.New("project name is required")
	ErrTimerRunning    = errors.New("a timer is already running for this project")
	ErrTimerNotRunning = errors.New("no running timer for this project")
)

// TimeTrackerService records time worked per project. At most one timer can
// run per project at a time.
type TimeTrackerService struct {
	repo repository.TimeEntryRepository
}

// NewTimeTrackerService creates a time tracker service.
func NewTimeTrackerService(repo repository.TimeEntryRepository) *TimeTrackerService {
	if repo == nil {
		return nil
	}
	return &TimeTrackerService{repo: repo}
}

// Start opens a new timer for the project.
func (s *TimeTrackerService) Start(ctx context.Context, project, task string) (*model.TimeEntry, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, ErrProjectRequired
	}

	if running, err := s.repo.FindRunning(ctx, project); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check running timer: %w", err)
	} else if running != nil {
		return nil, ErrTimerRunning
	}

	entry := &model.TimeEntry{
		ID:        uid.New(),
		Project:   project,
		Task:      strings.TrimSpace(task),
		StartedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}
	return entry, nil
}

// Stop closes the project's running timer and returns the finished entry.
func (s *TimeTrackerService) Stop(ctx context.Context, project, notes string) (*model.TimeEntry, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, ErrProjectRequired
	}

	entry, err := s.repo.FindRunning(ctx, project)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTimerNotRunning
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find running timer: %w", err)
	}

	now := time.Now()
	entry.StoppedAt = &now
	if notes != "" {
		entry.Notes = strings.TrimSpace(notes)
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to stop timer: %w", err)
	}
	return entry, nil
}

// List returns entries, optionally filtered to one project.
func (s *TimeTrackerService) List(ctx context.Context, project string) ([]model.TimeEntry, error) {
	entries, err := s.repo.List(ctx, strings.TrimSpace(project))
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return entries, nil
}

// Delete removes a time entry.
func (s *TimeTrackerService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Summary aggregates total time per project, sorted by project name.
func (s *TimeTrackerService) Summary(ctx context.Context) ([]model.ProjectSummary, error) {
	entries, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	now := time.Now()
	byProject := make(map[string]*model.ProjectSummary)
	for i := range entries {
		e := &entries[i]
		sum, ok := byProject[e.Project]
		if !ok {
			sum = &model.ProjectSummary{Project: e.Project}
			byProject[e.Project] = sum
		}
		sum.Entries++
		sum.Total += e.Duration(now)
		if e.Running() {
			sum.Running = true
		}
	}

	summaries := make([]model.ProjectSummary, 0, len(byProject))
	for _, sum := range byProject {
		sum.TotalSeconds = int64(sum.Total.Seconds())
		summaries = append(summaries, *sum)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Project < summaries[j].Project
	})
	return summaries, nil
}
