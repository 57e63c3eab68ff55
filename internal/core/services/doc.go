// Package services contains the core application logic: the query
// orchestrator, context building, generation with retry, ingestion and
// chat retention. Services depend only on the ports in
// internal/core/ports and are wired to concrete adapters at startup.
package services
