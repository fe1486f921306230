package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/runlog/internal/models"
	"github.com/mmynk/runlog/internal/storage"
)

// RunsPerPage is the page size of a user's run list.
const RunsPerPage = 1

// RunService manages run records.
type RunService struct {
	runs   storage.RunStore
	logger *slog.Logger
}

// NewRunService creates a new run service.
func NewRunService(runs storage.RunStore, logger *slog.Logger) *RunService {
	return &RunService{runs: runs, logger: logger}
}

// Submit records a new run authored by author.
func (s *RunService) Submit(ctx context.Context, author *models.User, sequence, option1, option2, option3 string) (*models.Run, error) {
	if author == nil {
		return nil, ErrUnauthenticated
	}

	run := &models.Run{
		Sequence: sequence,
		Option1:  option1,
		Option2:  option2,
		Option3:  option3,
		DateTime: time.Now().UTC(),
		AuthorID: author.ID,
		Author:   author,
	}

	if err := s.runs.CreateRun(ctx, run); err != nil {
		s.logger.Error("Submit failed", "user_id", author.ID, "error", err)
		return nil, fmt.Errorf("failed to submit run: %w", err)
	}

	s.logger.Info("Run submitted", "run_id", run.ID, "user_id", author.ID)
	return run, nil
}

// Get returns a run with its author. A miss is storage.ErrNotFound.
func (s *RunService) Get(ctx context.Context, id int64) (*models.Run, error) {
	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListByAuthor returns page number page of author's runs, newest first.
// A page below 1, or past the end of a non-empty list, is storage.ErrNotFound.
func (s *RunService) ListByAuthor(ctx context.Context, author *models.User, page int) (*models.Page[*models.Run], error) {
	if author == nil {
		return nil, ErrUnauthenticated
	}
	if page < 1 {
		return nil, fmt.Errorf("page %d: %w", page, storage.ErrNotFound)
	}

	result, err := s.runs.ListRunsByAuthor(ctx, author.ID, page, RunsPerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if result.OutOfRange() {
		return nil, fmt.Errorf("page %d: %w", page, storage.ErrNotFound)
	}

	return result, nil
}

// Delete removes run id on behalf of identity.
// Returns storage.ErrNotFound for a missing run and ErrForbidden when
// identity is not its author.
func (s *RunService) Delete(ctx context.Context, identity *models.User, id int64) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		return err
	}

	if !run.OwnedBy(identity) {
		s.logger.Warn("Delete refused", "run_id", id, "user_id", identity.ID, "author_id", run.AuthorID)
		return ErrForbidden
	}

	if err := s.runs.DeleteRun(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		s.logger.Error("Delete failed", "run_id", id, "error", err)
		return fmt.Errorf("failed to delete run: %w", err)
	}

	s.logger.Info("Run deleted", "run_id", id, "user_id", identity.ID)
	return nil
}
