package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxOwnerNameLength mirrors the owner name column
const MaxOwnerNameLength = 128

// Owner is the user who creates and exclusively holds tasks
type Owner struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewOwner creates an owner with a fresh random id
func NewOwner(name string) (*Owner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: owner name required", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > MaxOwnerNameLength {
		return nil, fmt.Errorf("%w: owner name exceeds %d characters", ErrInvalidArgument, MaxOwnerNameLength)
	}
	return &Owner{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ParseOwnerID parses an owner reference
func ParseOwnerID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed owner id %q", ErrInvalidArgument, s)
	}
	return id, nil
}
