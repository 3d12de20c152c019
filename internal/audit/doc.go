// Package audit defines the audit event model and sink implementations
// used by the engine's asynchronous audit dispatcher.
//
// Sinks receive events on a dispatcher goroutine, never on the request
// path; a slow sink can therefore delay other audit events but not
// authentication or guard decisions.
package audit
