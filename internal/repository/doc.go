// Package repository defines the data access interfaces for taskboard.
//
// This package provides the repository abstraction layer for persisting
// and retrieving tasks, rankings and owners. Implementations live in the
// sqlite and postgres subpackages.
//
// # Transactions
//
// Every service operation runs inside Store.WithinTx. The Repos handed to
// the callback are bound to that transaction, so all reads and the single
// write of an operation commit or roll back together.
//
// # Absence
//
// Lookups by key return (nil, nil) when the row does not exist. Callers
// decide whether absence is an error (a missing task) or a default (a
// missing ranking reads as empty).
//
// # Testing
//
// The sqlite implementation is tested with in-memory databases. The
// postgres implementation is tested only when TASKBOARD_TEST_POSTGRES_DSN
// points at a reachable server.
package repository
