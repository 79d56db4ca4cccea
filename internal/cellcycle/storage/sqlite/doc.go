// Package sqlite persists resolution runs: run parameters, resolved frames,
// phase records and diagnostics.
//
// The schema is managed by golang-migrate from migrations embedded in the
// binary. Stores follow one pattern: a struct holding *sql.DB with
// Insert/Get/List/Delete methods, and sql.ErrNoRows for unknown ids.
package sqlite
