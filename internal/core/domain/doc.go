// Package domain contains the core business entities for Calliope:
// articles, section items, processed chunks, the ingestion queue, and
// hybrid search results. It has no dependencies on adapters or services.
package domain
