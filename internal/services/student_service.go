package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/repository"
)

const maxUsernameLength = 64

// StudentService handles student accounts
type StudentService interface {
	Register(ctx context.Context, username string) (*models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
}

type studentService struct {
	studentRepo repository.StudentRepository
}

// NewStudentService creates a new StudentService
func NewStudentService(studentRepo repository.StudentRepository) StudentService {
	return &studentService{studentRepo: studentRepo}
}

func (s *studentService) Register(ctx context.Context, username string) (*models.Student, error) {
	log := logger.FromContext(ctx)
	username = strings.TrimSpace(username)
	log.Debug("registering student: username=%s", username)

	if username == "" {
		return nil, errors.NewValidationError("username", "cannot be empty")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return nil, errors.NewValidationError("username", "must be at most 64 characters")
	}

	student, err := s.studentRepo.Insert(ctx, username)
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.NewConflictError("username already taken: " + username)
		}
		log.Error("failed to register student: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return student, nil
}

func (s *studentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting student: id=%d", id)

	student, err := s.studentRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("student", id)
		}
		log.Error("failed to get student: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if student == nil {
		return nil, errors.NewNotFoundError("student", id)
	}
	return student, nil
}
