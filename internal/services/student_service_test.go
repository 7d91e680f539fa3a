package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/repository"
	"github.com/abacusquest/abacusquest/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStudentService_Register(t *testing.T) {
	repo := new(mocks.MockStudentRepository)
	repo.On("Insert", mock.Anything, "ada").Return(&models.Student{ID: 1, Username: "ada", CreatedAt: time.Now()}, nil)

	st, err := NewStudentService(repo).Register(context.Background(), "  ada ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.ID)
	repo.AssertExpectations(t)
}

func TestStudentService_Register_Validation(t *testing.T) {
	repo := new(mocks.MockStudentRepository)
	svc := NewStudentService(repo)

	_, err := svc.Register(context.Background(), "   ")
	assert.Equal(t, errors.ErrCodeValidation, errors.As(err).Code)

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Register(context.Background(), string(long))
	assert.Equal(t, errors.ErrCodeValidation, errors.As(err).Code)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestStudentService_Register_Duplicate(t *testing.T) {
	repo := new(mocks.MockStudentRepository)
	repo.On("Insert", mock.Anything, "ada").Return(nil, repository.ErrDuplicate)

	_, err := NewStudentService(repo).Register(context.Background(), "ada")
	assert.Equal(t, errors.ErrCodeConflict, errors.As(err).Code)
}

func TestStudentService_Get_NotFound(t *testing.T) {
	repo := new(mocks.MockStudentRepository)
	repo.On("Get", mock.Anything, int64(9)).Return(nil, sql.ErrNoRows)

	_, err := NewStudentService(repo).Get(context.Background(), 9)
	assert.Equal(t, errors.ErrCodeNotFound, errors.As(err).Code)
}
