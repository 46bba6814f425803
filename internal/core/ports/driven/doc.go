// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ArticleSource: Fetches article pages from the encyclopedia
//   - ChunkStore: Article, section, chunk and queue persistence, plus lexical search
//   - Tokenizer: Token counting for chunk budgets
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Vector storage and nearest-neighbour search
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Reranker: Cross-encoder reranking. Without it, fused order stands.
//   - Converter: LLM-backed math/table conversion. Without it, deterministic fallbacks apply.
//   - BlobStore: Generation-format chunk text. Without it, results omit generation text.
//
// ConfigStore sits outside the pipeline; the CLI wires adapters from it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
