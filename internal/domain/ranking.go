package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ranking is an owner's manual sort preference over their tasks.
// At most one exists per owner; it is replaced wholesale on save.
type Ranking struct {
	OwnerID   uuid.UUID `json:"owner_id" yaml:"owner_id"`
	TaskIDs   []int64   `json:"task_ids" yaml:"task_ids"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewRanking creates an empty ranking bound to the owner
func NewRanking(owner uuid.UUID) *Ranking {
	return &Ranking{
		OwnerID: owner,
		TaskIDs: []int64{},
	}
}

// Replace discards the previous order and stores ids as given
func (r *Ranking) Replace(ids []int64) {
	r.TaskIDs = append(make([]int64, 0, len(ids)), ids...)
	r.UpdatedAt = time.Now().UTC()
}

// RankedIDs returns the stored order, or nil for an absent ranking
func (r *Ranking) RankedIDs() []int64 {
	if r == nil {
		return nil
	}
	return r.TaskIDs
}

// MergeOrder combines a ranked id sequence with a filtered task list.
//
// Ranked ids are walked in order and each matching task is emitted once;
// repeated and unknown ids are skipped. Tasks the ranking does not mention
// follow in their original order. The input slice is not modified.
func MergeOrder(tasks []Task, ranked []int64) []Task {
	out := make([]Task, 0, len(tasks))
	if len(tasks) == 0 {
		return out
	}

	index := make(map[int64]int, len(tasks))
	for i, t := range tasks {
		if _, ok := index[t.ID]; !ok {
			index[t.ID] = i
		}
	}

	emitted := make([]bool, len(tasks))
	for _, id := range ranked {
		i, ok := index[id]
		if !ok || emitted[i] {
			continue
		}
		emitted[i] = true
		out = append(out, tasks[i])
	}

	for i, t := range tasks {
		if !emitted[i] {
			out = append(out, t)
		}
	}
	return out
}
