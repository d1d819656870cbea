package domain

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func tasksWithIDs(ids ...int64) []Task {
	owner := uuid.New()
	tasks := make([]Task, len(ids))
	for i, id := range ids {
		tasks[i] = Task{ID: id, OwnerID: owner, Title: string(rune('a' + i)), State: StateOpen}
	}
	return tasks
}

func ids(tasks []Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestMergeOrder(t *testing.T) {
	tests := []struct {
		name   string
		tasks  []int64
		ranked []int64
		want   []int64
	}{
		{"empty ranking keeps base order", []int64{1, 2, 3}, nil, []int64{1, 2, 3}},
		{"full ranking wins", []int64{1, 2, 3, 4}, []int64{3, 1, 2, 4}, []int64{3, 1, 2, 4}},
		{"partial ranking appends unranked", []int64{1, 2, 3, 4}, []int64{4, 2}, []int64{4, 2, 1, 3}},
		{"dangling ids skipped", []int64{1, 2}, []int64{9, 2, 7}, []int64{2, 1}},
		{"duplicates use first occurrence", []int64{1, 2, 3}, []int64{3, 1, 3, 1}, []int64{3, 1, 2}},
		{"no tasks", nil, []int64{1, 2}, []int64{}},
		{"only dangling", []int64{5, 6}, []int64{1, 2}, []int64{5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(MergeOrder(tasksWithIDs(tt.tasks...), tt.ranked))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMergeOrderDoesNotMutateInput(t *testing.T) {
	tasks := tasksWithIDs(1, 2, 3)
	before := ids(tasks)

	MergeOrder(tasks, []int64{3, 2, 1})

	if !reflect.DeepEqual(ids(tasks), before) {
		t.Errorf("input reordered: %v", ids(tasks))
	}
}

func TestMergeOrderScenario(t *testing.T) {
	tasks := tasksWithIDs(1, 2, 3, 4) // a b c d

	titles := func(ts []Task) []string {
		out := make([]string, len(ts))
		for i, t := range ts {
			out[i] = t.Title
		}
		return out
	}

	got := titles(MergeOrder(tasks, []int64{3, 1, 2, 4}))
	if !reflect.DeepEqual(got, []string{"c", "a", "b", "d"}) {
		t.Errorf("first ranking: got %v", got)
	}

	got = titles(MergeOrder(tasks, []int64{4, 1, 2, 3}))
	if !reflect.DeepEqual(got, []string{"d", "a", "b", "c"}) {
		t.Errorf("second ranking: got %v", got)
	}
}

// Every filtered task appears exactly once whatever the ranking contains.
func TestMergeOrderProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		n := rng.Intn(12)
		base := make([]int64, n)
		for i := range base {
			base[i] = int64(i*2 + 1)
		}
		tasks := tasksWithIDs(base...)

		ranked := make([]int64, rng.Intn(16))
		for i := range ranked {
			ranked[i] = int64(rng.Intn(30))
		}

		merged := MergeOrder(tasks, ranked)
		if len(merged) != len(tasks) {
			t.Fatalf("round %d: expected %d tasks, got %d", round, len(tasks), len(merged))
		}

		counts := make(map[int64]int)
		for _, task := range merged {
			counts[task.ID]++
		}
		for _, id := range base {
			if counts[id] != 1 {
				t.Fatalf("round %d: task %d appears %d times (ranked %v)", round, id, counts[id], ranked)
			}
		}

		// A permutation of the base ids must be reproduced exactly.
		perm := append([]int64(nil), base...)
		rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		if got := ids(MergeOrder(tasks, perm)); len(perm) > 0 && !reflect.DeepEqual(got, perm) {
			t.Fatalf("round %d: expected %v, got %v", round, perm, got)
		}
	}
}

func TestRankingReplace(t *testing.T) {
	owner := uuid.New()
	r := NewRanking(owner)

	if r.OwnerID != owner {
		t.Errorf("expected owner %s, got %s", owner, r.OwnerID)
	}
	if len(r.TaskIDs) != 0 {
		t.Errorf("expected empty ranking, got %v", r.TaskIDs)
	}

	input := []int64{3, 1, 2}
	r.Replace(input)
	input[0] = 99

	if !reflect.DeepEqual(r.TaskIDs, []int64{3, 1, 2}) {
		t.Errorf("expected copy of input, got %v", r.TaskIDs)
	}
	if r.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}

	r.Replace([]int64{4})
	if !reflect.DeepEqual(r.TaskIDs, []int64{4}) {
		t.Errorf("expected full replacement, got %v", r.TaskIDs)
	}
}

func TestRankingRankedIDsOnNil(t *testing.T) {
	var r *Ranking
	if r.RankedIDs() != nil {
		t.Error("expected nil ids for absent ranking")
	}
}
