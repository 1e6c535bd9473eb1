package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/grading"
)

// MockGrader implements grading.Grader for testing
type MockGrader struct {
	// GradeFn allows test cases to mock the Grade behavior
	GradeFn func(ctx context.Context, req grading.Request) (*domain.Feedback, error)

	// Default response values
	Feedback *domain.Feedback
	Err      error

	mu       sync.Mutex
	requests []grading.Request
}

// Grade implements the grading.Grader interface
func (m *MockGrader) Grade(ctx context.Context, req grading.Request) (*domain.Feedback, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GradeFn != nil {
		return m.GradeFn(ctx, req)
	}
	return m.Feedback, m.Err
}

// Calls returns the number of Grade calls made so far.
func (m *MockGrader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request passed to Grade.
func (m *MockGrader) Requests() []grading.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]grading.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// NewMockGraderWithFeedback creates a MockGrader that returns fb
func NewMockGraderWithFeedback(fb *domain.Feedback) *MockGrader {
	return &MockGrader{Feedback: fb}
}

// NewMockGraderWithError creates a MockGrader that returns err
func NewMockGraderWithError(err error) *MockGrader {
	return &MockGrader{Err: err}
}

var _ grading.Grader = (*MockGrader)(nil)
