// Package httpapi serves view preferences over go-router. Every response
// carries the table state together with the notifications raised while the
// request ran, so clients can render toasts without a second round trip.
package httpapi
