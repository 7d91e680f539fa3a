package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/abacusquest/abacusquest/internal/repository"
	"github.com/abacusquest/abacusquest/internal/repository/sqlite"
	"github.com/abacusquest/abacusquest/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type StudentRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.StudentRepository
}

func (s *StudentRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewStudentRepository(s.db)
}

func (s *StudentRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *StudentRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()

	st, err := s.repo.Insert(ctx, "ada")
	s.Require().NoError(err)
	s.Assert().Greater(st.ID, int64(0))
	s.Assert().Equal("ada", st.Username)
	s.Assert().False(st.CreatedAt.IsZero())

	got, err := s.repo.Get(ctx, st.ID)
	s.Require().NoError(err)
	s.Assert().Equal(st.ID, got.ID)

	byName, err := s.repo.GetByUsername(ctx, "ada")
	s.Require().NoError(err)
	s.Assert().Equal(st.ID, byName.ID)
}

func (s *StudentRepositorySuite) TestInsert_Duplicate() {
	ctx := context.Background()
	_, err := s.repo.Insert(ctx, "ada")
	s.Require().NoError(err)

	_, err = s.repo.Insert(ctx, "ada")
	s.Assert().ErrorIs(err, repository.ErrDuplicate)
}

func (s *StudentRepositorySuite) TestGet_NotFound() {
	st, err := s.repo.Get(context.Background(), 99999)
	s.Assert().ErrorIs(err, sql.ErrNoRows)
	s.Assert().Nil(st)
}

func TestStudentRepositorySuite(t *testing.T) {
	suite.Run(t, new(StudentRepositorySuite))
}
