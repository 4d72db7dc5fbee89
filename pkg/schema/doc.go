// Package schema aggregates go-crud controller metadata into one OpenAPI
// document for admin consumers.
package schema
