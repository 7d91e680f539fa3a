package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/repository"
)

type studentRepository struct {
	db *sql.DB
}

// NewStudentRepository creates a new StudentRepository implementation
func NewStudentRepository(db *sql.DB) repository.StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Insert(ctx context.Context, username string) (*models.Student, error) {
	log := logger.FromContext(ctx).WithPrefix("student_repo")
	log.Debug("inserting student: %s", username)

	var st models.Student
	err := r.db.QueryRowContext(ctx, `
INSERT INTO students (username)
VALUES (?)
RETURNING id, username, created_at
`, username).Scan(&st.ID, &st.Username, &st.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("username already taken: %s", username)
			return nil, repository.ErrDuplicate
		}
		log.Error("failed to insert student: %v", err)
		return nil, err
	}
	log.Debug("student inserted: id=%d", st.ID)
	return &st, nil
}

func (r *studentRepository) Get(ctx context.Context, id int64) (*models.Student, error) {
	log := logger.FromContext(ctx).WithPrefix("student_repo")
	log.Debug("getting student: id=%d", id)
	return r.scanOne(ctx, log, `SELECT id, username, created_at FROM students WHERE id = ?`, id)
}

func (r *studentRepository) GetByUsername(ctx context.Context, username string) (*models.Student, error) {
	log := logger.FromContext(ctx).WithPrefix("student_repo")
	log.Debug("getting student: username=%s", username)
	return r.scanOne(ctx, log, `SELECT id, username, created_at FROM students WHERE username = ?`, username)
}

func (r *studentRepository) scanOne(ctx context.Context, log *logger.Logger, query string, arg any) (*models.Student, error) {
	var st models.Student
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&st.ID, &st.Username, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("student not found: %v", arg)
		} else {
			log.Error("failed to get student: %v", err)
		}
		return nil, err
	}
	return &st, nil
}
