// Package api adapts the marketplace services to HTTP. Handlers decode and
// validate request DTOs, call a service with the authenticated actor and
// translate domain error kinds into status codes with sanitized messages.
package api
