package repository

import (
	"context"
	"errors"
	"time"

	"github.com/abacusquest/abacusquest/internal/models"
)

// StudentRepository handles student accounts
type StudentRepository interface {
	Get(ctx context.Context, id int64) (*models.Student, error)
	GetByUsername(ctx context.Context, username string) (*models.Student, error)
	Insert(ctx context.Context, username string) (*models.Student, error)
}

// ProgressRepository handles level progress and the class completion ledger
type ProgressRepository interface {
	ListLevels(ctx context.Context, studentID int64) ([]models.LevelProgress, error)
	UpsertLevel(ctx context.Context, studentID int64, level models.LevelProgress) error
	// RecordCompletions stores the first completion time of each class and
	// returns how many were new.
	RecordCompletions(ctx context.Context, studentID int64, levelID int, classIDs []int, at time.Time) (int, error)
	Completions(ctx context.Context, studentID int64) ([]models.ClassCompletion, error)
}

// PracticeRepository handles practice sessions and their problem timings
type PracticeRepository interface {
	Insert(ctx context.Context, session models.PracticeSession) (int64, error)
	List(ctx context.Context, filter models.PracticeFilter) ([]models.PracticeSession, error)
	Count(ctx context.Context, filter models.PracticeFilter) (int, error)
	ListAll(ctx context.Context, studentID int64) ([]models.PracticeSession, error)
}

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("repository: duplicate record")
