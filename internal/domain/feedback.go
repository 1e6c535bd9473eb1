package domain

// Feedback is the grading oracle's verdict on a free-text answer. Every part
// is asserted to occur verbatim in the text it refers to: CorrectParts and
// IncorrectParts in the user's answer, MissingPoints in the reference answer.
type Feedback struct {
	CorrectParts   []string `json:"correct_parts"`
	IncorrectParts []string `json:"incorrect_parts"`
	MissingPoints  []string `json:"missing_points"`
	Explanation    string   `json:"explanation"`
}

// SegmentType tags a span of an answer for display.
type SegmentType string

// Segment types
const (
	SegmentCorrect   SegmentType = "correct"
	SegmentIncorrect SegmentType = "incorrect"
	SegmentMissing   SegmentType = "missing"
	SegmentNone      SegmentType = "none"
)

// AnswerSegment is a contiguous span of an answer string.
type AnswerSegment struct {
	Text string      `json:"text"`
	Type SegmentType `json:"type"`
}
