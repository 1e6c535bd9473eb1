// Package segment splits free-text answers into typed display spans using the
// substrings a grading oracle reported as correct, incorrect or missing.
//
// Matching is first-fit, leftmost and single-pass: at each cursor position the
// earliest occurrence of any candidate wins, ties go to the candidate checked
// first (correct parts before incorrect parts, then list order), and the cursor
// jumps past the match. No global alignment is attempted.
package segment

import (
	"strings"

	"github.com/phrazzld/scry-quest/internal/domain"
)

type candidate struct {
	text string
	typ  domain.SegmentType
}

// SegmentUserAnswer tags spans of the user's answer as correct or incorrect.
func SegmentUserAnswer(userInput string, feedback domain.Feedback) []domain.AnswerSegment {
	candidates := collect(nil, feedback.CorrectParts, domain.SegmentCorrect)
	candidates = collect(candidates, feedback.IncorrectParts, domain.SegmentIncorrect)
	return align(userInput, candidates)
}

// SegmentCorrectAnswer tags spans of the reference answer the user missed.
func SegmentCorrectAnswer(correctAnswer string, feedback domain.Feedback) []domain.AnswerSegment {
	return align(correctAnswer, collect(nil, feedback.MissingPoints, domain.SegmentMissing))
}

// Reconstruct concatenates segment texts.
func Reconstruct(segments []domain.AnswerSegment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// collect appends non-empty parts as candidates of the given type.
func collect(dst []candidate, parts []string, typ domain.SegmentType) []candidate {
	for _, p := range parts {
		if p == "" {
			continue
		}
		dst = append(dst, candidate{text: p, typ: typ})
	}
	return dst
}

func align(input string, candidates []candidate) []domain.AnswerSegment {
	segments := []domain.AnswerSegment{}
	if input == "" {
		return segments
	}

	cursor := 0
	for cursor < len(input) {
		best, bestAt := -1, -1
		for i, c := range candidates {
			at := strings.Index(input[cursor:], c.text)
			if at < 0 {
				continue
			}
			if bestAt < 0 || at < bestAt {
				best, bestAt = i, at
			}
		}
		if best < 0 {
			break
		}

		start := cursor + bestAt
		segments = appendUnmatched(segments, input[cursor:start])

		match := candidates[best]
		segments = append(segments, domain.AnswerSegment{Text: match.text, Type: match.typ})
		cursor = start + len(match.text)
	}

	return appendUnmatched(segments, input[cursor:])
}

// appendUnmatched adds text as a none segment unless it is blank.
func appendUnmatched(segments []domain.AnswerSegment, text string) []domain.AnswerSegment {
	if strings.TrimSpace(text) == "" {
		return segments
	}
	return append(segments, domain.AnswerSegment{Text: text, Type: domain.SegmentNone})
}
