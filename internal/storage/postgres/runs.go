package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/mmynk/runlog/internal/models"
	"github.com/mmynk/runlog/internal/storage"
)

// CreateRun inserts a run without touching its Author.
func (s *Store) CreateRun(ctx context.Context, run *models.Run) error {
	if run.DateTime.IsZero() {
		run.DateTime = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(run).Error; err != nil {
		return fmt.Errorf("failed to insert run: %w", translateError(err))
	}
	return nil
}

// GetRun retrieves a run with its author. Returns storage.ErrNotFound on a miss.
func (s *Store) GetRun(ctx context.Context, id int64) (*models.Run, error) {
	var run models.Run
	if err := s.db.WithContext(ctx).Preload("Author").Take(&run, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("run %d: %w", id, translateError(err))
	}
	return &run, nil
}

// ListRunsByAuthor retrieves one page of an author's runs, newest first.
func (s *Store) ListRunsByAuthor(ctx context.Context, authorID int64, page, perPage int) (*models.Page[*models.Run], error) {
	result := &models.Page[*models.Run]{Page: page, PerPage: perPage}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Run{}).Where("user_id = ?", authorID).Count(&result.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	err := db.Preload("Author").
		Where("user_id = ?", authorID).
		Order("date_time DESC, id DESC").
		Limit(perPage).
		Offset(storage.Offset(page, perPage)).
		Find(&result.Items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs by author: %w", err)
	}

	return result, nil
}

// DeleteRun removes a run by ID. Returns storage.ErrNotFound if it does not exist.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Run{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("run %d: %w", id, storage.ErrNotFound)
	}
	return nil
}
