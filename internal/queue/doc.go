// Package queue persists podcast submissions and their pipeline state in
// SQLite. Each submission walks a forward-only status machine from pending to
// complete; failed is terminal and reachable from any non-terminal status.
package queue
