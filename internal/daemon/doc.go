// Package daemon hosts the long-running process: it enforces
// single-instance execution with a lock file, runs the workflow manager,
// and serves the HTTP API used by the CLI.
package daemon
