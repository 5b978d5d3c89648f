// Package driving defines the interfaces through which external actors
// (CLI commands) drive the core services.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// Core services implement them; the CLI adapter consumes them.
package driving
