// Package driving defines the interfaces through which external actors
// drive the application core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI adapter calls these interfaces; core services implement them.
package driving
