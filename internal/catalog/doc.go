// Package catalog persists the known-song catalog in SQLite and serves an
// immutable in-memory snapshot to the matching pipeline.
package catalog
