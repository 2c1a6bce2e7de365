package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hspace-portal/models"
)

// Ensure MockCompetitionStore implements CompetitionStore
var _ CompetitionStore = (*MockCompetitionStore)(nil)

// MockCompetitionStore is a mock implementation for testing and extends `mock.Mock`
type MockCompetitionStore struct {
	mock.Mock
}

func (m *MockCompetitionStore) CreateCompetition(ctx context.Context, c *models.Competition) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil {
		c.ID = 1
	}
	return args.Error(0)
}

func (m *MockCompetitionStore) UpdateCompetition(ctx context.Context, c *models.Competition) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompetitionStore) GetCompetitionByTitle(ctx context.Context, title string) (models.Competition, error) {
	args := m.Called(ctx, title)
	return args.Get(0).(models.Competition), args.Error(1)
}

func (m *MockCompetitionStore) ListCompetitions(ctx context.Context, approvedOnly bool) ([]models.Competition, error) {
	args := m.Called(ctx, approvedOnly)
	return args.Get(0).([]models.Competition), args.Error(1)
}

func (m *MockCompetitionStore) SetCompetitionApproved(ctx context.Context, id int64, approved bool) error {
	args := m.Called(ctx, id, approved)
	return args.Error(0)
}

func (m *MockCompetitionStore) GetCompetition(ctx context.Context, id int64) (models.Competition, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Competition), args.Error(1)
}
