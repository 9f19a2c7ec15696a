// Package repository defines the client data access contract.
//
// Every backend (flat files, SQL) implements Repository so callers can swap
// them without code changes. Backends that can order by a natural field also
// implement Sorter; the returned Ordering says whether the order was written
// back to storage or only applies to the current view.
//
// # Implementations
//
//   - file: whole collection kept in memory, rewritten to JSON or YAML on every mutation
//   - sqlstore: one SQL statement per operation (PostgreSQL or SQLite)
//   - dbadapter: sqlstore plus a transient surname-sorted view
//
// # Wrappers
//
//   - filter: non-destructive filtering and sorting of reads
//   - observable: notifies subscribers after reads and writes
//
// # Pagination
//
// Pages are 1-based. A page number below 1, a non-positive size or a page
// past the end returns an empty slice rather than an error.
package repository
