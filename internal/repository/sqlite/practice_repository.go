package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/abacusquest/abacusquest/internal/db"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/repository"
)

const defaultPracticeLimit = 200

var sessionColumns = []string{
	"id", "student_id", "practice_type", "operation", "score",
	"total_time", "average_time", "number_of_questions", "completed_at",
}

type practiceRepository struct {
	db *sql.DB
}

// NewPracticeRepository creates a new PracticeRepository implementation
func NewPracticeRepository(db *sql.DB) repository.PracticeRepository {
	return &practiceRepository{db: db}
}

func (r *practiceRepository) Insert(ctx context.Context, s models.PracticeSession) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("practice_repo")
	log.Debug("inserting practice session: student_id=%d, type=%s, problems=%d", s.StudentID, s.PracticeType, len(s.ProblemTimes))

	var id int64
	err := db.Tx(ctx, r.db, func(tx *sql.Tx) error {
		var numQuestions sql.NullInt64
		if s.NumberOfQuestions != nil {
			numQuestions = sql.NullInt64{Int64: int64(*s.NumberOfQuestions), Valid: true}
		}
		err := tx.QueryRowContext(ctx, `
INSERT INTO practice_sessions (student_id, practice_type, operation, score, total_time, average_time, number_of_questions, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`, s.StudentID, s.PracticeType, s.Operation, s.Score, s.TotalTime, s.AverageTime, numQuestions, s.CompletedAt.UTC()).Scan(&id)
		if err != nil {
			return err
		}
		if len(s.ProblemTimes) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO problem_times (session_id, position, question_id, start_time, end_time, time_spent, is_correct, is_skipped)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, p := range s.ProblemTimes {
			if _, err := stmt.ExecContext(ctx, id, i, p.QuestionID, nullTime(p.StartTime), nullTime(p.EndTime), p.TimeSpent, p.IsCorrect, p.IsSkipped); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert practice session: %v", err)
		return 0, err
	}

	log.Debug("practice session inserted: id=%d", id)
	return id, nil
}

func (r *practiceRepository) List(ctx context.Context, filter models.PracticeFilter) ([]models.PracticeSession, error) {
	log := logger.FromContext(ctx).WithPrefix("practice_repo")
	log.Debug("listing practice sessions with filter: student_id=%d, type=%s, operation=%s",
		filter.StudentID, filter.PracticeType, filter.Operation)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPracticeLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := applyPracticeFilter(sqlBuilder.Select(sessionColumns...).From("practice_sessions"), filter).
		OrderBy("completed_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sessions, err := r.query(ctx, query)
	if err != nil {
		log.Error("failed to list practice sessions: %v", err)
		return nil, err
	}
	log.Debug("found %d practice sessions", len(sessions))
	return sessions, nil
}

func (r *practiceRepository) Count(ctx context.Context, filter models.PracticeFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("practice_repo")

	sqlStr, args, err := applyPracticeFilter(sqlBuilder.Select("COUNT(*)").From("practice_sessions"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count practice sessions: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *practiceRepository) ListAll(ctx context.Context, studentID int64) ([]models.PracticeSession, error) {
	log := logger.FromContext(ctx).WithPrefix("practice_repo")
	log.Debug("listing all practice sessions: student_id=%d", studentID)

	query := sqlBuilder.Select(sessionColumns...).
		From("practice_sessions").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("completed_at ASC", "id ASC")

	sessions, err := r.query(ctx, query)
	if err != nil {
		log.Error("failed to list practice sessions: %v", err)
		return nil, err
	}
	return sessions, nil
}

func applyPracticeFilter(q squirrel.SelectBuilder, filter models.PracticeFilter) squirrel.SelectBuilder {
	if filter.StudentID != 0 {
		q = q.Where(squirrel.Eq{"student_id": filter.StudentID})
	}
	if filter.PracticeType != "" {
		q = q.Where(squirrel.Eq{"practice_type": filter.PracticeType})
	}
	if filter.Operation != "" {
		q = q.Where(squirrel.Eq{"operation": filter.Operation})
	}
	if filter.Since != nil {
		q = q.Where(squirrel.GtOrEq{"completed_at": filter.Since.UTC()})
	}
	return q
}

// query runs a session select and attaches the problem timings of every row.
func (r *practiceRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.PracticeSession, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.PracticeSession{}
	index := map[int64]int{}
	for rows.Next() {
		var s models.PracticeSession
		var numQuestions sql.NullInt64
		if err := rows.Scan(&s.ID, &s.StudentID, &s.PracticeType, &s.Operation, &s.Score,
			&s.TotalTime, &s.AverageTime, &numQuestions, &s.CompletedAt); err != nil {
			return nil, err
		}
		if numQuestions.Valid {
			n := int(numQuestions.Int64)
			s.NumberOfQuestions = &n
		}
		index[s.ID] = len(sessions)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(sessions) == 0 {
		return sessions, nil
	}
	// Timings are selected through the same session query so the statement
	// binds the filter arguments only, however many sessions match.
	idsSQL, idsArgs, err := q.RemoveColumns().Columns("id").ToSql()
	if err != nil {
		return nil, err
	}
	timesSQL, timesArgs, err := sqlBuilder.
		Select("session_id", "question_id", "start_time", "end_time", "time_spent", "is_correct", "is_skipped").
		From("problem_times").
		Where("session_id IN ("+idsSQL+")", idsArgs...).
		OrderBy("session_id", "position").
		ToSql()
	if err != nil {
		return nil, err
	}
	trows, err := r.db.QueryContext(ctx, timesSQL, timesArgs...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()

	for trows.Next() {
		var sessionID int64
		var p models.ProblemTime
		var start, end sql.NullTime
		if err := trows.Scan(&sessionID, &p.QuestionID, &start, &end, &p.TimeSpent, &p.IsCorrect, &p.IsSkipped); err != nil {
			return nil, err
		}
		p.StartTime = start.Time
		p.EndTime = end.Time
		i, ok := index[sessionID]
		if !ok {
			continue
		}
		sessions[i].ProblemTimes = append(sessions[i].ProblemTimes, p)
	}
	return sessions, trows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
