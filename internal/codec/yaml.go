package codec

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"taskboard/internal/domain"
)

// YAMLCodec handles YAML export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlList is the YAML document layout. Rank is the 1-based display position.
type yamlList struct {
	Owner      string     `yaml:"owner"`
	States     []string   `yaml:"states,flow"`
	ExportedAt time.Time  `yaml:"exported_at"`
	Tasks      []yamlTask `yaml:"tasks"`
}

type yamlTask struct {
	Rank        int       `yaml:"rank"`
	ID          int64     `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description,omitempty"`
	State       string    `yaml:"state"`
	CreatedAt   time.Time `yaml:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at"`
}

// Parse reads a task list written by Export
func (c *YAMLCodec) Parse(r io.Reader) (*TaskList, error) {
	var yl yamlList
	if err := yaml.NewDecoder(r).Decode(&yl); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	owner, err := uuid.Parse(yl.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner %q: %w", yl.Owner, err)
	}

	list := &TaskList{
		Owner:      owner,
		ExportedAt: yl.ExportedAt,
		Tasks:      make([]domain.Task, 0, len(yl.Tasks)),
	}
	states, err := domain.ParseStates(yl.States)
	if err != nil {
		return nil, err
	}
	list.States = states

	for _, yt := range yl.Tasks {
		state, err := domain.ParseState(yt.State)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", yt.ID, err)
		}
		list.Tasks = append(list.Tasks, domain.Task{
			ID:          yt.ID,
			OwnerID:     owner,
			Title:       yt.Title,
			Description: yt.Description,
			State:       state,
			CreatedAt:   yt.CreatedAt,
			UpdatedAt:   yt.UpdatedAt,
		})
	}

	return list, nil
}

// Export writes the task list as YAML
func (c *YAMLCodec) Export(list *TaskList, w io.Writer) error {
	yl := yamlList{
		Owner:      list.Owner.String(),
		ExportedAt: list.ExportedAt,
		Tasks:      make([]yamlTask, 0, len(list.Tasks)),
	}
	for _, s := range list.States {
		yl.States = append(yl.States, string(s))
	}

	for i, t := range list.Tasks {
		yl.Tasks = append(yl.Tasks, yamlTask{
			Rank:        i + 1,
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			State:       string(t.State),
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(yl); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
