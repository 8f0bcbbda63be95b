// Package api provides the HTTP handlers for the task management API:
// authentication, task CRUD, search, and health reporting. Handlers decode
// and validate requests, delegate to the service and store layers, and map
// internal errors to sanitized HTTP responses.
package api
