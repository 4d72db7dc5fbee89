// Package command exposes go-command compatible handlers for view preference
// mutations (columns, filters, sorting, paging, saved views, reset). Commands
// are wired by the service layer and can be invoked by any transport.
package command
