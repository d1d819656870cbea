package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec handles JSON export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse reads a task list written by Export
func (c *JSONCodec) Parse(r io.Reader) (*TaskList, error) {
	var list TaskList
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &list, nil
}

// Export writes the task list as indented JSON
func (c *JSONCodec) Export(list *TaskList, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(list); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
