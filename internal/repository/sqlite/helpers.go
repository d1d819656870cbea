package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToTime converts sql.NullTime to time.Time (zero when NULL)
func nullToTime(nt sql.NullTime) time.Time {
	if nt.Valid {
		return nt.Time
	}
	return time.Time{}
}

// timeOrNow returns t, or the current UTC time when t is zero
func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalIDs encodes a ranked id list. A nil list is stored as [].
func marshalIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// placeholders returns "?, ?, ?" for n arguments
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the tasks table:
// 1. Add field to taskRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update taskColumns constant - APPEND to end
// 4. Update toDomain() to map new field to domain.Task
// 5. Add the column to migrate() in sqlite.go
// 6. Update relevant tests
//
// CRITICAL: Column order must match between taskColumns and scanArgs().
// Same pattern applies to rankings and owners.

// ============================================================================
// Task Row Scanner
// ============================================================================

// taskRow holds all columns from a task query for scanning
type taskRow struct {
	ID          int64
	OwnerID     uuid.UUID
	Title       string
	Description sql.NullString
	State       string
	CreatedAt   sql.NullTime
	UpdatedAt   sql.NullTime
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match taskColumns order exactly:
// id, owner_id, title, description, state, created_at, updated_at
func (r *taskRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,          // 1
		&r.OwnerID,     // 2
		&r.Title,       // 3
		&r.Description, // 4
		&r.State,       // 5
		&r.CreatedAt,   // 6
		&r.UpdatedAt,   // 7
	}
}

// toDomain converts the scanned row to a domain.Task
func (r *taskRow) toDomain() (domain.Task, error) {
	state := domain.State(r.State)
	if !state.IsValid() {
		return domain.Task{}, fmt.Errorf("task %d has unknown state %q", r.ID, r.State)
	}
	return domain.Task{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: nullToString(r.Description),
		State:       state,
		CreatedAt:   nullToTime(r.CreatedAt),
		UpdatedAt:   nullToTime(r.UpdatedAt),
	}, nil
}

// taskColumns returns the SELECT column list for task queries
const taskColumns = `id, owner_id, title, description, state, created_at, updated_at`

// ============================================================================
// Ranking Row Scanner
// ============================================================================

// rankingRow holds all columns from a ranking query for scanning
type rankingRow struct {
	OwnerID     uuid.UUID
	TaskIDsJSON sql.NullString
	UpdatedAt   sql.NullTime
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match rankingColumns order exactly: owner_id, task_ids, updated_at
func (r *rankingRow) scanArgs() []interface{} {
	return []interface{}{
		&r.OwnerID,     // 1
		&r.TaskIDsJSON, // 2
		&r.UpdatedAt,   // 3
	}
}

// toDomain converts the scanned row to a domain.Ranking
func (r *rankingRow) toDomain() (*domain.Ranking, error) {
	ranking := domain.NewRanking(r.OwnerID)
	ranking.UpdatedAt = nullToTime(r.UpdatedAt)
	if err := unmarshalJSONField(r.TaskIDsJSON, &ranking.TaskIDs); err != nil {
		return nil, fmt.Errorf("unmarshal task ids: %w", err)
	}
	if ranking.TaskIDs == nil {
		ranking.TaskIDs = []int64{}
	}
	return ranking, nil
}

// rankingColumns returns the SELECT column list for ranking queries
const rankingColumns = `owner_id, task_ids, updated_at`

// ============================================================================
// Owner Row Scanner
// ============================================================================

// ownerRow holds all columns from an owner query for scanning
type ownerRow struct {
	ID        uuid.UUID
	Name      string
	CreatedAt sql.NullTime
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match ownerColumns order exactly: id, name, created_at
func (r *ownerRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,        // 1
		&r.Name,      // 2
		&r.CreatedAt, // 3
	}
}

// toDomain converts the scanned row to a domain.Owner
func (r *ownerRow) toDomain() domain.Owner {
	return domain.Owner{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: nullToTime(r.CreatedAt),
	}
}

// ownerColumns returns the SELECT column list for owner queries
const ownerColumns = `id, name, created_at`
