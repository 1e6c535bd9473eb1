// Package gemini provides an implementation of the grading.Grader interface
// that uses Google's Gemini API to judge free-text flashcard answers.
//
// This package is an infrastructure adapter: it renders the grading prompt,
// asks Gemini for a JSON verdict, and translates API failures into the
// grading package's error taxonomy.
//
// Transient failures (rate limits, server errors, network errors) are
// retried with exponential backoff. Content blocked by safety filters and
// malformed responses are returned immediately.
package gemini
