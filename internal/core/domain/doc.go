// Package domain contains the core types of the revpipe sync engine:
// sources, sync windows, cursors, canonical records, sink batches and
// per-source run results. It has no dependencies on adapters or
// external services.
package domain
