// Package openai implements grading.Grader against an OpenAI-compatible
// chat-completions endpoint.
package openai
