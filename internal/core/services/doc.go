// Package services contains the core orchestration logic: window
// resolution, the static source registry and the per-source sync
// pipeline. Services depend only on domain types and driven ports.
package services
