// Package progression implements the progression arithmetic of the study
// game: experience thresholds per level, level resolution from accumulated
// experience, experience awarded for a study session, and daily streaks.
//
// All functions are pure and deterministic. Callers pass "now" explicitly so
// that streak calculations can be tested without a clock.
package progression
