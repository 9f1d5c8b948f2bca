// Package api defines the transport types shared by the daemon's HTTP
// server and the CLI client, plus the read-only queue service backing
// queue queries.
package api
