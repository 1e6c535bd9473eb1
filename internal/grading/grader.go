package grading

import (
	"context"
	"strings"

	"github.com/phrazzld/scry-quest/internal/domain"
)

// Request is one answer to grade.
type Request struct {
	Question        string `json:"question"`
	ReferenceAnswer string `json:"reference_answer" validate:"required"`
	UserAnswer      string `json:"user_answer" validate:"required"`
}

// Grader defines the interface for judging a free-text answer.
// This interface serves as a boundary between the application core and
// external AI/LLM services.
type Grader interface {
	// Grade returns the oracle's feedback for the request. Implementations
	// may be slow and may fail; callers surface the failure to the user and
	// must not segment a failed result.
	Grade(ctx context.Context, req Request) (*domain.Feedback, error)
}

// GraderFunc adapts a function to the Grader interface.
type GraderFunc func(ctx context.Context, req Request) (*domain.Feedback, error)

// Grade implements Grader.
func (f GraderFunc) Grade(ctx context.Context, req Request) (*domain.Feedback, error) {
	return f(ctx, req)
}

// FilterFeedback drops oracle parts that do not occur verbatim in the text
// they describe, along with empty entries. Correct and incorrect parts are
// checked against the user's answer, missing points against the reference.
func FilterFeedback(fb *domain.Feedback, req Request) *domain.Feedback {
	if fb == nil {
		return &domain.Feedback{
			CorrectParts:   []string{},
			IncorrectParts: []string{},
			MissingPoints:  []string{},
		}
	}
	return &domain.Feedback{
		CorrectParts:   occurring(fb.CorrectParts, req.UserAnswer),
		IncorrectParts: occurring(fb.IncorrectParts, req.UserAnswer),
		MissingPoints:  occurring(fb.MissingPoints, req.ReferenceAnswer),
		Explanation:    fb.Explanation,
	}
}

func occurring(parts []string, text string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" && strings.Contains(text, p) {
			out = append(out, p)
		}
	}
	return out
}
