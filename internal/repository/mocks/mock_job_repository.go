package mocks

import (
	"context"
	"time"

	"standardsapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Create(ctx context.Context, job *model.ValidationJob) (*model.ValidationJob, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ValidationJob), args.Error(1)
}

func (m *MockJobRepository) FindByID(ctx context.Context, id string) (*model.ValidationJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ValidationJob), args.Error(1)
}

func (m *MockJobRepository) ActiveByDocument(ctx context.Context, documentID string) (*model.ValidationJob, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ValidationJob), args.Error(1)
}

func (m *MockJobRepository) LatestByDocument(ctx context.Context, documentID string) (*model.ValidationJob, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ValidationJob), args.Error(1)
}

func (m *MockJobRepository) Claim(ctx context.Context, id, workerID string, claimTTL time.Duration) (*model.ValidationJob, error) {
	args := m.Called(ctx, id, workerID, claimTTL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ValidationJob), args.Error(1)
}

func (m *MockJobRepository) SetResolvedStandard(ctx context.Context, id, standardID string) error {
	args := m.Called(ctx, id, standardID)
	return args.Error(0)
}

func (m *MockJobRepository) Finish(ctx context.Context, id string, state model.JobState, lastError *string) error {
	args := m.Called(ctx, id, state, lastError)
	return args.Error(0)
}

func (m *MockJobRepository) Retry(ctx context.Context, id, lastError string, nextAttemptAt time.Time) error {
	args := m.Called(ctx, id, lastError, nextAttemptAt)
	return args.Error(0)
}

func (m *MockJobRepository) DueQueued(ctx context.Context, now time.Time, limit int) ([]string, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockJobRepository) ReclaimExpired(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
