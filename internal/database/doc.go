// Package database manages the PostgreSQL connection pool for the optional
// listing event archive.
package database
