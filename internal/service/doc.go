// Package service implements business logic for taskboard.
//
// Services sit between the HTTP handlers or CLI and the repository layer.
// Each operation runs inside one repository.Store transaction and publishes
// an event on the EventBus after it commits.
//
// # Services
//
// RankingService is the entry point for tasks. It creates, edits, completes
// and reopens tasks, saves an owner's manual ranking, and returns the
// owner's task list in display order by merging the ranking with the
// filtered tasks (see domain.MergeOrder).
//
// A ranking is read as empty when none was saved. It is created on the
// first SaveRankings call for an owner and replaced wholesale afterwards.
//
// Export writes the display-ordered list through a codec. Import reads
// such a document back and recreates its tasks for another owner, ranked
// after whatever that owner already ranked.
//
// OwnerService registers and lists owners.
//
// # Event System
//
// Events carry the owner they concern so the SSE hub can deliver them only
// to that owner's clients. Publishing never blocks; slow subscribers miss
// events.
package service
