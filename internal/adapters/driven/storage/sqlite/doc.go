// Package sqlite implements the document store over a single local SQLite
// file (or in-memory database). Vectors are stored as little-endian
// float32 BLOBs and nearest-neighbour queries are an exact brute-force
// scan with the metric computed in-process, using the same score
// convention and tie-break as the Postgres backend.
//
// Intended for local development and tests; production deployments use
// the pgvector-backed store.
package sqlite
