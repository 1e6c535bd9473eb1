// Package task runs periodic maintenance jobs on a cron schedule. Jobs
// implement Task and are registered with a Scheduler, which owns their
// lifecycle and is started and stopped alongside the HTTP server.
package task
