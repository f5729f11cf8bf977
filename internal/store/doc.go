// Package store provides SQLite-backed durable storage for user-defined units.
//
// Units defined through the CLI outlive the process: each definition is a row
// in the units table and is replayed into a unit registry at startup by
// LoadInto.
//
// # Ordering
//
// Rows carry a seq INTEGER assigned at insert time. Listing orders by
// seq ASC, id ASC COLLATE BINARY so that replay registers units in the order
// they were defined, which matters when a later unit's quantity was introduced
// by an earlier one.
//
// # Idempotency
//
// The symbol column is UNIQUE and inserts use ON CONFLICT(symbol) DO NOTHING.
// Defining the same symbol twice leaves the first row untouched.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
