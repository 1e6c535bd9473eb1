// Package grading defines the boundary to the external grading oracle: an
// AI service that judges a free-text answer against a reference answer and
// reports which substrings are correct, incorrect or missing. Concrete
// Grader implementations live in internal/platform (Gemini, OpenAI).
package grading
