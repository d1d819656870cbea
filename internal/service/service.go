package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"taskboard/internal/codec"
	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

// RankingService provides business logic for tasks and their manual order
type RankingService struct {
	store    repository.Store
	eventBus *EventBus
}

// NewRankingService creates a new ranking service
func NewRankingService(store repository.Store, eventBus *EventBus) *RankingService {
	return &RankingService{
		store:    store,
		eventBus: eventBus,
	}
}

// QueryByOwner returns the owner's tasks in the given states, ranked tasks
// first. No states means open tasks only.
func (s *RankingService) QueryByOwner(ctx context.Context, owner uuid.UUID, states []string) ([]domain.Task, error) {
	parsed, err := domain.ParseStates(states)
	if err != nil {
		return nil, err
	}

	var merged []domain.Task
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		var (
			ranking *domain.Ranking
			tasks   []domain.Task
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			ranking, err = repos.Rankings.FindByOwner(gctx, owner)
			return err
		})
		g.Go(func() error {
			var err error
			tasks, err = repos.Tasks.FindByOwnerAndStates(gctx, owner, parsed)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		merged = domain.MergeOrder(tasks, ranking.RankedIDs())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// SaveRankings replaces the owner's ranking with orderedIDs. Ids that are not
// tasks of the owner are dropped.
func (s *RankingService) SaveRankings(ctx context.Context, owner uuid.UUID, orderedIDs []int64) (*domain.Ranking, error) {
	var saved *domain.Ranking
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		exists, err := repos.Owners.Exists(ctx, owner)
		if err != nil {
			return err
		}
		if !exists {
			return domain.OwnerNotFound(owner)
		}

		owned, err := repos.Tasks.FindByOwnerAndStates(ctx, owner, domain.ValidStates())
		if err != nil {
			return err
		}
		ids := ownedIDs(orderedIDs, owned)

		ranking, err := repos.Rankings.FindByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if ranking == nil {
			saved, err = s.createRanking(ctx, repos, owner, ids)
		} else {
			saved, err = s.replaceRanking(ctx, repos, ranking, ids)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventRankingsSaved,
		Owner:   owner,
		Payload: map[string]int{"count": len(saved.TaskIDs)},
	})

	return saved, nil
}

// createRanking is the first save for an owner
func (s *RankingService) createRanking(ctx context.Context, repos repository.Repos, owner uuid.UUID, ids []int64) (*domain.Ranking, error) {
	ranking := domain.NewRanking(owner)
	ranking.Replace(ids)
	return repos.Rankings.Persist(ctx, ranking)
}

// replaceRanking overwrites an existing ranking wholesale
func (s *RankingService) replaceRanking(ctx context.Context, repos repository.Repos, ranking *domain.Ranking, ids []int64) (*domain.Ranking, error) {
	ranking.Replace(ids)
	return repos.Rankings.Persist(ctx, ranking)
}

// ownedIDs keeps the ids that belong to one of tasks, in their given order.
// Repeats are kept.
func ownedIDs(ids []int64, tasks []domain.Task) []int64 {
	owned := make(map[int64]struct{}, len(tasks))
	for _, t := range tasks {
		owned[t.ID] = struct{}{}
	}

	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := owned[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// CompleteTask marks a task complete
func (s *RankingService) CompleteTask(ctx context.Context, id int64) (domain.Result, error) {
	return s.transition(ctx, id, domain.StateComplete, EventTaskCompleted)
}

// ReopenTask marks a task open again
func (s *RankingService) ReopenTask(ctx context.Context, id int64) (domain.Result, error) {
	return s.transition(ctx, id, domain.StateOpen, EventTaskReopened)
}

func (s *RankingService) transition(ctx context.Context, id int64, target domain.State, eventType EventType) (domain.Result, error) {
	var result domain.Result
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		task, err := repos.Tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return domain.TaskNotFound(id)
		}

		if !task.Transition(target) {
			result = domain.NotModified(task)
			return nil
		}

		task, err = repos.Tasks.Persist(ctx, task)
		if err != nil {
			return err
		}
		result = domain.Updated(task)
		return nil
	})
	if err != nil {
		return domain.Result{}, err
	}

	if result.Modified() {
		s.eventBus.Publish(Event{
			Type:    eventType,
			Owner:   result.Task.OwnerID,
			Payload: map[string]int64{"task_id": id},
		})
	}

	return result, nil
}

// Update applies a partial edit to a task
func (s *RankingService) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var (
		updated *domain.Task
		changed bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		task, err := repos.Tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return domain.TaskNotFound(id)
		}

		changed = patch.Apply(task)
		if !changed {
			updated = task
			return nil
		}

		updated, err = repos.Tasks.Persist(ctx, task)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.eventBus.Publish(Event{
			Type:    EventTaskUpdated,
			Owner:   updated.OwnerID,
			Payload: map[string]int64{"task_id": id},
		})
	}

	return updated, nil
}

// CreateTask creates an open, unranked task for the owner
func (s *RankingService) CreateTask(ctx context.Context, title string, owner uuid.UUID) (*domain.Task, error) {
	if err := domain.ValidateTitle(title); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)

	var created *domain.Task
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		exists, err := repos.Owners.Exists(ctx, owner)
		if err != nil {
			return err
		}
		if !exists {
			return domain.OwnerNotFound(owner)
		}

		created, err = repos.Tasks.Persist(ctx, domain.NewTask(title, owner))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventTaskCreated,
		Owner:   owner,
		Payload: map[string]int64{"task_id": created.ID},
	})

	return created, nil
}

// GetTask retrieves a single task by ID
func (s *RankingService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		task, err = repos.Tasks.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.TaskNotFound(id)
	}
	return task, nil
}

// Export writes the owner's merged task list in the given format
func (s *RankingService) Export(ctx context.Context, owner uuid.UUID, states []string, format string, w io.Writer) error {
	exporter, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	parsed, err := domain.ParseStates(states)
	if err != nil {
		return err
	}

	tasks, err := s.QueryByOwner(ctx, owner, states)
	if err != nil {
		return err
	}

	return exporter.Export(&codec.TaskList{
		Owner:      owner,
		States:     parsed,
		ExportedAt: time.Now().UTC(),
		Tasks:      tasks,
	}, w)
}

// Import reads a task list written by Export and recreates its tasks for
// owner. The imported tasks get new ids and are ranked after the owner's
// existing ranking, in file order. The owner recorded in the file is ignored.
func (s *RankingService) Import(ctx context.Context, owner uuid.UUID, format string, r io.Reader) ([]domain.Task, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, err
	}
	list, err := c.Parse(r)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	pending := make([]*domain.Task, 0, len(list.Tasks))
	for i, t := range list.Tasks {
		if err := domain.ValidateTitle(t.Title); err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		if err := domain.ValidateDescription(t.Description); err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		state, err := domain.ParseState(string(t.State))
		if err != nil {
			return nil, err
		}
		task := domain.NewTask(t.Title, owner)
		task.Description = t.Description
		task.Transition(state)
		pending = append(pending, task)
	}

	imported := make([]domain.Task, 0, len(pending))
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		exists, err := repos.Owners.Exists(ctx, owner)
		if err != nil {
			return err
		}
		if !exists {
			return domain.OwnerNotFound(owner)
		}

		ids := make([]int64, 0, len(pending))
		for _, task := range pending {
			created, err := repos.Tasks.Persist(ctx, task)
			if err != nil {
				return err
			}
			imported = append(imported, *created)
			ids = append(ids, created.ID)
		}
		if len(ids) == 0 {
			return nil
		}

		ranking, err := repos.Rankings.FindByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if ranking == nil {
			_, err = s.createRanking(ctx, repos, owner, ids)
		} else {
			_, err = s.replaceRanking(ctx, repos, ranking, append(ranking.RankedIDs(), ids...))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(imported) > 0 {
		s.eventBus.Publish(Event{
			Type:    EventTasksImported,
			Owner:   owner,
			Payload: map[string]int{"count": len(imported)},
		})
	}

	return imported, nil
}
