// Command podsculpt is the CLI client for the podsculpt daemon. It submits
// podcast feeds, inspects the queue, and fetches signed clip links over the
// daemon's HTTP API.
package main
