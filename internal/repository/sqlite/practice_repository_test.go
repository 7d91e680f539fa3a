package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/repository"
	"github.com/abacusquest/abacusquest/internal/repository/sqlite"
	"github.com/abacusquest/abacusquest/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type PracticeRepositorySuite struct {
	suite.Suite
	db        *sql.DB
	repo      repository.PracticeRepository
	studentID int64
	base      time.Time
}

func (s *PracticeRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewPracticeRepository(s.db)
	s.studentID = testutil.SeedStudent(s.T(), s.db, "ada")
	s.base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
}

func (s *PracticeRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *PracticeRepositorySuite) insert(practiceType, operation string, at time.Time) int64 {
	id, err := s.repo.Insert(context.Background(), models.PracticeSession{
		StudentID:    s.studentID,
		PracticeType: practiceType,
		Operation:    operation,
		Score:        1,
		CompletedAt:  at,
	})
	s.Require().NoError(err)
	return id
}

func (s *PracticeRepositorySuite) TestInsertWithProblemTimes() {
	ctx := context.Background()
	n := 2
	session := models.PracticeSession{
		StudentID:         s.studentID,
		PracticeType:      models.PracticeTimed,
		Operation:         "addition",
		Score:             1,
		TotalTime:         15,
		AverageTime:       7.5,
		NumberOfQuestions: &n,
		CompletedAt:       s.base,
		ProblemTimes: []models.ProblemTime{
			{QuestionID: "q1", StartTime: s.base, EndTime: s.base.Add(10 * time.Second), TimeSpent: 10, IsCorrect: true},
			{QuestionID: "q2", TimeSpent: 5, IsSkipped: true},
		},
	}

	id, err := s.repo.Insert(ctx, session)
	s.Require().NoError(err)
	s.Assert().Greater(id, int64(0))

	all, err := s.repo.ListAll(ctx, s.studentID)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	got := all[0]
	s.Assert().Equal(id, got.ID)
	s.Require().NotNil(got.NumberOfQuestions)
	s.Assert().Equal(2, *got.NumberOfQuestions)
	s.Require().Len(got.ProblemTimes, 2)
	s.Assert().Equal("q1", got.ProblemTimes[0].QuestionID)
	s.Assert().True(got.ProblemTimes[0].IsCorrect)
	s.Assert().True(got.ProblemTimes[0].StartTime.Equal(s.base))
	s.Assert().True(got.ProblemTimes[1].StartTime.IsZero())
	s.Assert().True(got.ProblemTimes[1].IsSkipped)
}

func (s *PracticeRepositorySuite) TestListWithFilter() {
	ctx := context.Background()
	s.insert(models.PracticeTimed, "addition", s.base)
	s.insert(models.PracticeTimed, "subtraction", s.base.Add(time.Hour))
	s.insert(models.PracticeFlashcards, "addition", s.base.Add(2*time.Hour))
	other := testutil.SeedStudent(s.T(), s.db, "grace")
	_, err := s.repo.Insert(ctx, models.PracticeSession{StudentID: other, PracticeType: models.PracticeTimed, CompletedAt: s.base})
	s.Require().NoError(err)

	sessions, err := s.repo.List(ctx, models.PracticeFilter{StudentID: s.studentID})
	s.Require().NoError(err)
	s.Require().Len(sessions, 3)
	s.Assert().Equal(models.PracticeFlashcards, sessions[0].PracticeType)

	sessions, err = s.repo.List(ctx, models.PracticeFilter{StudentID: s.studentID, PracticeType: models.PracticeTimed})
	s.Require().NoError(err)
	s.Assert().Len(sessions, 2)

	sessions, err = s.repo.List(ctx, models.PracticeFilter{StudentID: s.studentID, Operation: "addition"})
	s.Require().NoError(err)
	s.Assert().Len(sessions, 2)

	since := s.base.Add(30 * time.Minute)
	sessions, err = s.repo.List(ctx, models.PracticeFilter{StudentID: s.studentID, Since: &since})
	s.Require().NoError(err)
	s.Assert().Len(sessions, 2)

	sessions, err = s.repo.List(ctx, models.PracticeFilter{StudentID: s.studentID, Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Assert().Equal("subtraction", sessions[0].Operation)

	count, err := s.repo.Count(ctx, models.PracticeFilter{StudentID: s.studentID, PracticeType: models.PracticeTimed})
	s.Require().NoError(err)
	s.Assert().Equal(2, count)
}

func (s *PracticeRepositorySuite) TestListAll_Empty() {
	sessions, err := s.repo.ListAll(context.Background(), s.studentID)
	s.Require().NoError(err)
	s.Assert().Empty(sessions)
}

func (s *PracticeRepositorySuite) TestListAll_ManySessions() {
	ctx := context.Background()
	// More sessions than SQLite accepts bound variables in one statement.
	const total = 33000
	_, err := s.db.ExecContext(ctx, `
WITH RECURSIVE n(i) AS (SELECT 1 UNION ALL SELECT i + 1 FROM n WHERE i < ?)
INSERT INTO practice_sessions (student_id, practice_type, operation, score, completed_at)
SELECT ?, 'timed', 'addition', 1, ? FROM n
`, total, s.studentID, s.base)
	s.Require().NoError(err)

	withTimes, err := s.repo.Insert(ctx, models.PracticeSession{
		StudentID:    s.studentID,
		PracticeType: models.PracticeUntimed,
		CompletedAt:  s.base.Add(time.Hour),
		ProblemTimes: []models.ProblemTime{{QuestionID: "q1", TimeSpent: 4, IsCorrect: true}},
	})
	s.Require().NoError(err)

	sessions, err := s.repo.ListAll(ctx, s.studentID)
	s.Require().NoError(err)
	s.Require().Len(sessions, total+1)
	last := sessions[len(sessions)-1]
	s.Equal(withTimes, last.ID)
	s.Require().Len(last.ProblemTimes, 1)
	s.Equal("q1", last.ProblemTimes[0].QuestionID)
}

func (s *PracticeRepositorySuite) TestList_PageCarriesOnlyItsTimings() {
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := s.repo.Insert(ctx, models.PracticeSession{
			StudentID:    s.studentID,
			PracticeType: models.PracticeTimed,
			CompletedAt:  s.base.Add(time.Duration(i) * time.Hour),
			ProblemTimes: []models.ProblemTime{{QuestionID: "q", TimeSpent: float64(i + 1)}},
		})
		s.Require().NoError(err)
		ids = append(ids, id)
	}

	page, err := s.repo.List(ctx, models.PracticeFilter{StudentID: s.studentID, Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal(ids[1], page[0].ID)
	s.Require().Len(page[0].ProblemTimes, 1)
	s.Equal(2.0, page[0].ProblemTimes[0].TimeSpent)
}

func TestPracticeRepositorySuite(t *testing.T) {
	suite.Run(t, new(PracticeRepositorySuite))
}
