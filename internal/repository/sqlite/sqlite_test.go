package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// inTx runs fn in a committed transaction and fails the test on error
func inTx(t *testing.T, repo *Repository, fn repository.TxFunc) {
	t.Helper()
	assertNoError(t, repo.WithinTx(context.Background(), fn))
}

// seedOwner registers an owner and returns its id
func seedOwner(t *testing.T, repo *Repository, name string) uuid.UUID {
	t.Helper()
	owner, err := domain.NewOwner(name)
	assertNoError(t, err)
	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		_, err := repos.Owners.Persist(ctx, owner)
		return err
	})
	return owner.ID
}

// seedTasks creates open tasks for the owner in order and returns them
func seedTasks(t *testing.T, repo *Repository, owner uuid.UUID, titles ...string) []domain.Task {
	t.Helper()
	var out []domain.Task
	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		for _, title := range titles {
			task, err := repos.Tasks.Persist(ctx, domain.NewTask(title, owner))
			if err != nil {
				return err
			}
			out = append(out, *task)
		}
		return nil
	})
	return out
}

func titlesOf(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{
			name:     "valid string",
			input:    sql.NullString{String: "test", Valid: true},
			expected: "test",
		},
		{
			name:     "invalid string",
			input:    sql.NullString{String: "test", Valid: false},
			expected: "",
		},
		{
			name:     "empty valid string",
			input:    sql.NullString{String: "", Valid: true},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := nullToString(tt.input)
			assertEqual(t, tt.expected, result)
		})
	}
}

func TestNullToTime(t *testing.T) {
	now := time.Now()

	if got := nullToTime(sql.NullTime{Time: now, Valid: true}); !got.Equal(now) {
		t.Fatalf("expected %v, got %v", now, got)
	}
	if got := nullToTime(sql.NullTime{Time: now}); !got.IsZero() {
		t.Fatalf("expected zero time, got %v", got)
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}

	for _, tt := range tests {
		assertEqual(t, tt.expected, placeholders(tt.n))
	}
}

func TestMarshalIDs(t *testing.T) {
	got, err := marshalIDs(nil)
	assertNoError(t, err)
	assertEqual(t, "[]", got)

	got, err = marshalIDs([]int64{3, 1, 2})
	assertNoError(t, err)
	assertEqual(t, "[3,1,2]", got)
}

// ============================================================================
// Task Tests
// ============================================================================

func TestTaskPersistAndFind(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo, "alice")

	created := seedTasks(t, repo, owner, "a", "b")
	if created[0].ID == 0 || created[1].ID <= created[0].ID {
		t.Fatalf("expected ascending ids, got %d, %d", created[0].ID, created[1].ID)
	}

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		task, err := repos.Tasks.FindByID(ctx, created[0].ID)
		assertNoError(t, err)
		if task == nil {
			t.Fatal("expected task to be found")
		}
		assertEqual(t, "a", task.Title)
		assertEqual(t, owner, task.OwnerID)
		assertEqual(t, domain.StateOpen, task.State)
		if task.CreatedAt.IsZero() {
			t.Error("expected created_at to round-trip")
		}
		return nil
	})
}

func TestTaskFindByIDMissing(t *testing.T) {
	repo := newTestRepo(t)

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		task, err := repos.Tasks.FindByID(ctx, 123)
		assertNoError(t, err)
		if task != nil {
			t.Fatalf("expected nil task, got %+v", task)
		}
		return nil
	})
}

func TestTaskUpdate(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo, "alice")
	task := seedTasks(t, repo, owner, "a")[0]

	task.Title = "renamed"
	task.Description = "details"
	task.Transition(domain.StateComplete)

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		_, err := repos.Tasks.Persist(ctx, &task)
		return err
	})

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		got, err := repos.Tasks.FindByID(ctx, task.ID)
		assertNoError(t, err)
		assertEqual(t, "renamed", got.Title)
		assertEqual(t, "details", got.Description)
		assertEqual(t, domain.StateComplete, got.State)
		return nil
	})
}

func TestTaskUpdateMissing(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo, "alice")

	err := repo.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repos) error {
		task := domain.NewTask("ghost", owner)
		task.ID = 999
		_, err := repos.Tasks.Persist(ctx, task)
		return err
	})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskRequiresOwner(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repos) error {
		_, err := repos.Tasks.Persist(ctx, domain.NewTask("orphan", uuid.New()))
		return err
	})
	if err == nil {
		t.Fatal("expected foreign key violation for unknown owner")
	}
}

func TestFindByOwnerAndStates(t *testing.T) {
	repo := newTestRepo(t)
	alice := seedOwner(t, repo, "alice")
	bob := seedOwner(t, repo, "bob")

	tasks := seedTasks(t, repo, alice, "task-1", "task-2", "task-3", "task-4")
	seedTasks(t, repo, bob, "bob-1")

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		for _, i := range []int{1, 3} {
			task := tasks[i]
			task.Transition(domain.StateComplete)
			if _, err := repos.Tasks.Persist(ctx, &task); err != nil {
				return err
			}
		}
		return nil
	})

	tests := []struct {
		name     string
		owner    uuid.UUID
		states   []domain.State
		expected []string
	}{
		{"open only", alice, []domain.State{domain.StateOpen}, []string{"task-1", "task-3"}},
		{"complete only", alice, []domain.State{domain.StateComplete}, []string{"task-2", "task-4"}},
		{"both states", alice, []domain.State{domain.StateComplete, domain.StateOpen}, []string{"task-1", "task-2", "task-3", "task-4"}},
		{"other owner", bob, []domain.State{domain.StateOpen}, []string{"bob-1"}},
		{"no states", alice, nil, []string{}},
		{"unknown owner", uuid.New(), []domain.State{domain.StateOpen}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
				got, err := repos.Tasks.FindByOwnerAndStates(ctx, tt.owner, tt.states)
				assertNoError(t, err)
				assertEqual(t, tt.expected, titlesOf(got))
				return nil
			})
		})
	}
}

// ============================================================================
// Ranking Tests
// ============================================================================

func TestRankingAbsentByDefault(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo, "alice")

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		ranking, err := repos.Rankings.FindByOwner(ctx, owner)
		assertNoError(t, err)
		if ranking != nil {
			t.Fatalf("expected no ranking, got %+v", ranking)
		}
		return nil
	})
}

func TestRankingPersistReplaces(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo, "alice")

	save := func(ids ...int64) {
		inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
			ranking := domain.NewRanking(owner)
			ranking.Replace(ids)
			_, err := repos.Rankings.Persist(ctx, ranking)
			return err
		})
	}

	save(3, 1, 2, 4)
	save(4, 1)

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		ranking, err := repos.Rankings.FindByOwner(ctx, owner)
		assertNoError(t, err)
		if ranking == nil {
			t.Fatal("expected ranking to exist")
		}
		assertEqual(t, []int64{4, 1}, ranking.TaskIDs)
		assertEqual(t, owner, ranking.OwnerID)
		return nil
	})
}

func TestRankingEmptyList(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo, "alice")

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		_, err := repos.Rankings.Persist(ctx, domain.NewRanking(owner))
		return err
	})

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		ranking, err := repos.Rankings.FindByOwner(ctx, owner)
		assertNoError(t, err)
		assertEqual(t, []int64{}, ranking.TaskIDs)
		return nil
	})
}

// ============================================================================
// Owner Tests
// ============================================================================

func TestOwners(t *testing.T) {
	repo := newTestRepo(t)
	carol := seedOwner(t, repo, "carol")
	alice := seedOwner(t, repo, "alice")

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		exists, err := repos.Owners.Exists(ctx, alice)
		assertNoError(t, err)
		assertEqual(t, true, exists)

		exists, err = repos.Owners.Exists(ctx, uuid.New())
		assertNoError(t, err)
		assertEqual(t, false, exists)

		owner, err := repos.Owners.FindByID(ctx, carol)
		assertNoError(t, err)
		assertEqual(t, "carol", owner.Name)

		missing, err := repos.Owners.FindByID(ctx, uuid.New())
		assertNoError(t, err)
		if missing != nil {
			t.Fatalf("expected nil owner, got %+v", missing)
		}

		owners, err := repos.Owners.List(ctx)
		assertNoError(t, err)
		names := []string{}
		for _, o := range owners {
			names = append(names, o.Name)
		}
		assertEqual(t, []string{"alice", "carol"}, names)
		return nil
	})
}

// ============================================================================
// Transaction Tests
// ============================================================================

func TestWithinTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo, "alice")
	boom := errors.New("boom")

	err := repo.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repos) error {
		if _, err := repos.Tasks.Persist(ctx, domain.NewTask("a", owner)); err != nil {
			return err
		}
		ranking := domain.NewRanking(owner)
		ranking.Replace([]int64{1})
		if _, err := repos.Rankings.Persist(ctx, ranking); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		tasks, err := repos.Tasks.FindByOwnerAndStates(ctx, owner, domain.ValidStates())
		assertNoError(t, err)
		assertEqual(t, 0, len(tasks))

		ranking, err := repos.Rankings.FindByOwner(ctx, owner)
		assertNoError(t, err)
		if ranking != nil {
			t.Fatalf("expected no ranking after rollback, got %+v", ranking)
		}
		return nil
	})
}

func TestWithinTxCancelledContext(t *testing.T) {
	repo := newTestRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := repo.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if called {
		t.Fatal("expected callback not to run")
	}
}

func TestReposConcurrentUse(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo, "alice")
	seedTasks(t, repo, owner, "a", "b", "c")

	inTx(t, repo, func(ctx context.Context, repos repository.Repos) error {
		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				tasks, err := repos.Tasks.FindByOwnerAndStates(ctx, owner, []domain.State{domain.StateOpen})
				if err == nil && len(tasks) != 3 {
					err = errors.New("unexpected task count")
				}
				errs <- err
			}()
			go func() {
				defer wg.Done()
				_, err := repos.Rankings.FindByOwner(ctx, owner)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assertNoError(t, err)
		}
		return nil
	})
}
