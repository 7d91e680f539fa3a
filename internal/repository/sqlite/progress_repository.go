package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/abacusquest/abacusquest/internal/db"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/repository"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) ListLevels(ctx context.Context, studentID int64) ([]models.LevelProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("listing levels: student_id=%d", studentID)

	query, args, err := sqlBuilder.Select("payload").
		From("level_progress").
		Where("student_id = ?", studentID).
		OrderBy("level_id ASC").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list levels: %v", err)
		return nil, err
	}
	defer rows.Close()

	levels := []models.LevelProgress{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			log.Error("failed to scan level row: %v", err)
			return nil, err
		}
		var l models.LevelProgress
		if err := json.Unmarshal([]byte(payload), &l); err != nil {
			log.Error("failed to decode level payload: %v", err)
			return nil, err
		}
		levels = append(levels, l)
	}

	log.Debug("found %d levels", len(levels))
	return levels, rows.Err()
}

func (r *progressRepository) UpsertLevel(ctx context.Context, studentID int64, level models.LevelProgress) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("upserting level: student_id=%d, level_id=%d", studentID, level.LevelID)

	payload, err := json.Marshal(level)
	if err != nil {
		log.Error("failed to encode level payload: %v", err)
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO level_progress (student_id, level_id, payload, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(student_id, level_id) DO UPDATE SET
    payload = excluded.payload,
    updated_at = excluded.updated_at
`, studentID, level.LevelID, string(payload), time.Now().UTC())
	if err != nil {
		log.Error("failed to upsert level: %v", err)
	}
	return err
}

func (r *progressRepository) RecordCompletions(ctx context.Context, studentID int64, levelID int, classIDs []int, at time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("recording %d class completions: student_id=%d, level_id=%d", len(classIDs), studentID, levelID)
	if len(classIDs) == 0 {
		return 0, nil
	}

	recorded := 0
	err := db.Tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO class_completions (student_id, level_id, class_id, first_completed_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(student_id, level_id, class_id) DO NOTHING
`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, classID := range classIDs {
			res, err := stmt.ExecContext(ctx, studentID, levelID, classID, at.UTC())
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			recorded += int(n)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to record completions: %v", err)
		return 0, err
	}

	log.Debug("recorded %d new completions", recorded)
	return recorded, nil
}

func (r *progressRepository) Completions(ctx context.Context, studentID int64) ([]models.ClassCompletion, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("listing completions: student_id=%d", studentID)

	rows, err := r.db.QueryContext(ctx, `
SELECT student_id, level_id, class_id, first_completed_at
FROM class_completions
WHERE student_id = ?
ORDER BY level_id ASC, class_id ASC
`, studentID)
	if err != nil {
		log.Error("failed to list completions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var completions []models.ClassCompletion
	for rows.Next() {
		var c models.ClassCompletion
		if err := rows.Scan(&c.StudentID, &c.LevelID, &c.ClassID, &c.FirstCompletedAt); err != nil {
			log.Error("failed to scan completion row: %v", err)
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}
