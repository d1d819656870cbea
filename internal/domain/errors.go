package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrTaskNotFound means a task id did not resolve
	ErrTaskNotFound = errors.New("task not found")
	// ErrOwnerNotFound means an owner reference did not resolve
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrInvalidArgument covers unparseable tokens and malformed ids
	ErrInvalidArgument = errors.New("invalid argument")
)

// TaskNotFound returns ErrTaskNotFound annotated with the id
func TaskNotFound(id int64) error {
	return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
}

// OwnerNotFound returns ErrOwnerNotFound annotated with the id
func OwnerNotFound(id fmt.Stringer) error {
	return fmt.Errorf("%w: %s", ErrOwnerNotFound, id)
}

// ParseTaskID parses a positive task id
func ParseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: malformed task id %q", ErrInvalidArgument, s)
	}
	return id, nil
}
