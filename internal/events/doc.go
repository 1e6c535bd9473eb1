// Package events publishes progression events such as completed sessions,
// level-ups, claimed challenges and unlocked achievements.
//
// Services emit events after their transaction commits. Handlers registered
// with an InMemoryEmitter receive every event; a failing handler never
// affects the request that produced the event.
package events
