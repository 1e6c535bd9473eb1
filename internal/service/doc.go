// Package service contains the application use cases of the progression
// engine. Each service orchestrates the pure domain components (progression,
// challenge, achievement, segment) with the stores from internal/store and
// the grading oracle.
//
// Services own transactional boundaries: every flow that writes more than one
// record runs inside store.UnitOfWork.Do. Achievement evaluation always runs
// after the surrounding transaction commits, because its predicates read the
// committed totals and claim state.
//
// Errors:
//   - ErrInvalidInput for requests rejected by struct validation
//   - ErrChallengeNotFound when a claim names a challenge outside today's set
//   - ErrGradingUnavailable when the grading oracle fails
//   - *ServiceError wrapping store failures, with errors.Is support
package service
