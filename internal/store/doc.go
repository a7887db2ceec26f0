// Package store defines the persistence contracts of the quote engine: one
// store per entity plus a Transactor that binds all of them to a single unit
// of work. Implementations live under internal/platform.
package store
