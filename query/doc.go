// Package query exposes go-command Queriers for reading live view state,
// resolved preferences with their provenance, and per-table change history.
package query
