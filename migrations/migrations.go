// Package migrations ships the database schema with the binary.
package migrations

import _ "embed"

// Schema creates every table the API reads or writes. Statements are
// idempotent so it can be applied to an existing database.
//
//go:embed schema.sql
var Schema string
