// Package history records every accepted view preference change per user and
// table, and serves the change list and per-table summaries back to the
// owner. Filter values are masked with go-masker before they are stored.
package history
