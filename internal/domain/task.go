package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Column limits carried by the task schema
const (
	MaxTitleLength       = 128
	MaxDescriptionLength = 2048
)

// State represents the lifecycle state of a task
type State string

const (
	StateOpen     State = "open"     // Something left to do
	StateComplete State = "complete" // Marked done by the owner
)

// ValidStates returns all known task states
func ValidStates() []State {
	return []State{StateOpen, StateComplete}
}

// IsValid returns true if the state is a known value
func (s State) IsValid() bool {
	for _, valid := range ValidStates() {
		if s == valid {
			return true
		}
	}
	return false
}

// ParseState parses a state token case-insensitively.
// Unknown tokens fail with ErrInvalidArgument.
func ParseState(token string) (State, error) {
	state := State(strings.ToLower(strings.TrimSpace(token)))
	if !state.IsValid() {
		return "", fmt.Errorf("%w: %q is not a valid state", ErrInvalidArgument, token)
	}
	return state, nil
}

// ParseStates parses a list of state tokens, dropping repeats.
// An empty list means open tasks only.
func ParseStates(tokens []string) ([]State, error) {
	if len(tokens) == 0 {
		return []State{StateOpen}, nil
	}

	states := make([]State, 0, len(tokens))
	seen := make(map[State]struct{}, len(tokens))
	for _, token := range tokens {
		state, err := ParseState(token)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[state]; ok {
			continue
		}
		seen[state] = struct{}{}
		states = append(states, state)
	}
	return states, nil
}

// Task is a unit of work held by exactly one owner
type Task struct {
	ID          int64     `json:"id" yaml:"id"`
	OwnerID     uuid.UUID `json:"owner_id" yaml:"owner_id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	State       State     `json:"state" yaml:"state"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewTask creates an open, unranked task. The ID is assigned on persist.
func NewTask(title string, owner uuid.UUID) *Task {
	now := time.Now().UTC()
	return &Task{
		OwnerID:   owner,
		Title:     strings.TrimSpace(title),
		State:     StateOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOpen reports whether the task still has something to do
func (t *Task) IsOpen() bool {
	return t.State == StateOpen
}

// IsComplete reports whether the task has been marked done
func (t *Task) IsComplete() bool {
	return t.State == StateComplete
}

// Transition moves the task to the target state.
// It returns false when the task is already there.
func (t *Task) Transition(target State) bool {
	if t.State == target {
		return false
	}
	t.State = target
	t.UpdatedAt = time.Now().UTC()
	return true
}

// SetTitle replaces the title unless the new value is blank
func (t *Task) SetTitle(title string) {
	if strings.TrimSpace(title) == "" {
		return
	}
	t.Title = title
}

// TaskPatch describes a partial edit. Nil fields are left untouched;
// an empty Description clears it.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks patch values against the column limits. A blank title
// is ignored by Apply, so its length does not matter.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) != "" {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		return ValidateDescription(*p.Description)
	}
	return nil
}

// ValidateTitle checks a title is not blank and fits MaxTitleLength
// characters after trimming
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: task title required", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidArgument, MaxTitleLength)
	}
	return nil
}

// ValidateDescription checks a description fits MaxDescriptionLength characters
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidArgument, MaxDescriptionLength)
	}
	return nil
}

// IsEmpty returns true when the patch changes nothing
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil
}

// Apply writes the patch onto the task and reports whether anything changed
func (p TaskPatch) Apply(t *Task) bool {
	before := *t
	if p.Title != nil {
		t.SetTitle(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	changed := before.Title != t.Title || before.Description != t.Description
	if changed {
		t.UpdatedAt = time.Now().UTC()
	}
	return changed
}

// Outcome distinguishes a real change from an idempotent no-op
type Outcome string

const (
	OutcomeUpdated     Outcome = "updated"
	OutcomeNotModified Outcome = "not-modified"
)

// Result is the success value of a state transition.
// Task always holds the task as it is after the call.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Task    *Task   `json:"task"`
}

// Updated wraps a task that was changed and persisted
func Updated(t *Task) Result {
	return Result{Outcome: OutcomeUpdated, Task: t}
}

// NotModified wraps a task that was already in the target state
func NotModified(t *Task) Result {
	return Result{Outcome: OutcomeNotModified, Task: t}
}

// Modified reports whether the call changed anything
func (r Result) Modified() bool {
	return r.Outcome == OutcomeUpdated
}
