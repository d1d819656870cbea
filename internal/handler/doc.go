// Package handler implements HTTP request handlers for the taskboard API.
//
// # Handlers
//
// TaskHandler serves task creation, edits, state transitions, the ranked
// task list, ranking saves, export and import. OwnerHandler serves the owner
// directory. Health answers liveness probes.
//
// Middleware provides request logging, panic recovery, and CORS support.
//
// # Caller Identity
//
// Routes that act for an owner read the owner id from the X-User-Id header,
// falling back to the userId cookie. A missing or malformed id is a 400.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure. Not-found
// errors map to 404 and invalid arguments to 400.
//
// The task list carries an ETag and honours If-None-Match. Complete and
// reopen report "updated" or "not-modified" in the X-Task-Result header.
package handler
