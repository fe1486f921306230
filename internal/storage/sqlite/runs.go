package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/runlog/internal/models"
	"github.com/mmynk/runlog/internal/storage"
)

const runColumns = `
	r.id, r.sequence, r.option1, r.option2, r.option3, r.date_time, r.user_id,
	u.id, u.username, u.email, u.image_file, u.password, u.created_at`

// CreateRun persists a new run to the database.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.Run) error {
	if run.DateTime.IsZero() {
		run.DateTime = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (sequence, option1, option2, option3, date_time, user_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.Sequence, run.Option1, run.Option2, run.Option3, toUnix(run.DateTime), run.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", translateError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	run.ID = id

	return nil
}

// GetRun retrieves a run by ID, including its author.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+`
		 FROM runs r JOIN users u ON u.id = r.user_id
		 WHERE r.id = ?`,
		id,
	)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRunsByAuthor retrieves one page of an author's runs, newest first.
func (s *SQLiteStore) ListRunsByAuthor(ctx context.Context, authorID int64, page, perPage int) (*models.Page[*models.Run], error) {
	result := &models.Page[*models.Run]{Page: page, PerPage: perPage}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM runs WHERE user_id = ?",
		authorID,
	).Scan(&result.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+`
		 FROM runs r JOIN users u ON u.id = r.user_id
		 WHERE r.user_id = ?
		 ORDER BY r.date_time DESC, r.id DESC
		 LIMIT ? OFFSET ?`,
		authorID, perPage, storage.Offset(page, perPage),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs by author: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		result.Items = append(result.Items, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return result, nil
}

// DeleteRun removes a run by ID.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	run := &models.Run{Author: &models.User{}}
	var dateTime, createdAt int64

	err := row.Scan(
		&run.ID, &run.Sequence, &run.Option1, &run.Option2, &run.Option3, &dateTime, &run.AuthorID,
		&run.Author.ID, &run.Author.Username, &run.Author.Email, &run.Author.ImageFile,
		&run.Author.PasswordHash, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	run.DateTime = fromUnix(dateTime)
	run.Author.CreatedAt = fromUnix(createdAt)
	return run, nil
}
