package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/domain"
)

// TaskList is an owner's merged task list as written by an Exporter.
// Tasks are in display order.
type TaskList struct {
	Owner      uuid.UUID      `json:"owner"`
	States     []domain.State `json:"states"`
	ExportedAt time.Time      `json:"exported_at"`
	Tasks      []domain.Task  `json:"tasks"`
}

// Exporter writes a task list in one format
type Exporter interface {
	Export(list *TaskList, w io.Writer) error
	Format() string
	ContentType() string
}

// Codec is an Exporter that can also read its own output back
type Codec interface {
	Exporter
	Parse(r io.Reader) (*TaskList, error)
}

// ForFormat returns the codec for a format token; empty means json
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidArgument, format)
	}
}

// FormatForPath guesses a format token from a file extension
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
