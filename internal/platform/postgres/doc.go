// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store. Stores run against a store.DBTX, so
// the same code serves the connection pool and a transaction opened by DB.InTx.
// Schema migrations are embedded and applied with goose.
package postgres
