// Package driven defines interfaces for infrastructure adapters
// (secondary/outbound ports in hexagonal architecture terminology).
// The core services depend on these abstractions; concrete
// implementations live under internal/adapters/driven.
package driven
