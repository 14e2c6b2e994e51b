package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueHistoryPrune(cutoff time.Time) error {
	args := m.Called(cutoff)
	return args.Error(0)
}
