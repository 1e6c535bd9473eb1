// Package mocks provides centralized test doubles for the interfaces used
// throughout the application.
//
// Function-field mocks (MockGrader, MockJWTService) let a test override a
// single method while falling back to canned values, and record their calls
// for verification. The Memory* stores are working in-memory implementations
// of the store interfaces. MemoryUnitOfWork buffers writes until commit and
// holds per-user row locks, so service tests can observe rollback and
// concurrent transactions.
//
// Usage:
//
//	grader := &mocks.MockGrader{
//	    GradeFn: func(ctx context.Context, req grading.Request) (*domain.Feedback, error) {
//	        return &domain.Feedback{CorrectParts: []string{"water"}}, nil
//	    },
//	}
//	uow := mocks.NewMemoryUnitOfWork()
package mocks
