// Package domain contains the core business entities and rules for ragchat.
// These types have no dependencies on infrastructure - they represent
// pure business concepts: chunks of knowledge, scored retrieval results,
// chat sessions and the shaped result of a RAG query.
//
// Following hexagonal architecture:
//   - domain types are used by both ports and adapters
//   - domain types never import from adapters or services
//   - business validation lives here, once, not at every consumer
package domain
