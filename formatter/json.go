package formatter

import (
	"encoding/json"
	"fmt"
)

// BuildJSON serializes v as indented JSON followed by a newline.
func BuildJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(b, '\n'), nil
}
