// Package domain defines the core types of the client repository.
//
// # Core Types
//
// Client is the full client record: identity, name parts, birth date,
// contact details and an optional balance.
//
// ShortInfo is the reduced projection returned by paged listings.
//
// ID identifies a client. It is either a positive integer assigned by a
// repository or a 16-character opaque token generated for records created
// outside of one.
//
// # Validation
//
// Validate applies the field rules used by every write entry point (HTTP,
// CLI). Repositories themselves store whatever they are given.
package domain
