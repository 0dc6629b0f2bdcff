// Package driven defines the interfaces the core depends on:
// providers, normalisers, sinks, cursor storage, configuration and
// enrichment. Adapters implement these; the core only consumes them.
package driven
