// Package domain defines the core types for taskboard.
//
// This package holds the entities and value objects for per-owner task
// tracking with a manual display order.
//
// # Core Types
//
// Task is a unit of work owned by one Owner. Its State is a closed string
// enum (open, complete) parsed case-insensitively.
//
// Ranking is an owner's persisted manual order: an ordered sequence of task
// ids. It may mention ids that no longer match (dangling) and may omit tasks
// created since it was saved (unranked).
//
// # Ordering
//
// MergeOrder combines a Ranking with the live, filtered task list. Ranked
// tasks come first in ranking order; unranked tasks follow in creation
// order. Every filtered task appears exactly once.
//
// # Results and Errors
//
// State transitions return a Result whose Outcome is either updated or
// not-modified, so idempotent calls are successes. Failures use the sentinel
// errors ErrTaskNotFound, ErrOwnerNotFound and ErrInvalidArgument.
//
// # Design Principles
//
// - No database or transport dependencies
// - Pure merge logic testable on in-memory slices
package domain
