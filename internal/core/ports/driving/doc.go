// Package driving defines the interfaces through which entry points
// (CLI commands, the cron daemon) drive the core services.
package driving
