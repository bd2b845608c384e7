// Package postgres implements the document store over PostgreSQL with the
// pgvector extension. Nearest-neighbour queries run inside the database
// using the metric operators (<=>, <#>, <->), each backed by its own HNSW
// index so all three query shapes stay performant.
package postgres
