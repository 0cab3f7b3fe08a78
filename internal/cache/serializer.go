package cache

import (
	"encoding/json"
	"fmt"

	"github.com/LavishGent/breedbase/internal/types"
)

// JSONSerializer implements Serializer using JSON encoding.
type JSONSerializer struct {
	indent bool
}

// NewJSONSerializer creates a JSON serializer. With indent set the output is
// pretty-printed with two spaces.
func NewJSONSerializer(indent bool) *JSONSerializer {
	return &JSONSerializer{indent: indent}
}

// Marshal serializes a value to JSON bytes.
func (s *JSONSerializer) Marshal(v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if s.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSerializationFailed, err)
	}
	return data, nil
}

// Unmarshal deserializes JSON bytes into the destination.
func (s *JSONSerializer) Unmarshal(data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", types.ErrSerializationFailed, err)
	}
	return nil
}

var _ types.Serializer = (*JSONSerializer)(nil)
