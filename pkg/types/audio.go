package types

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AudioFiles maps a question id (or "address") to one or many audio references.
// Older records store a single string per key; decoding always yields a list.
type AudioFiles map[string][]string

// UnmarshalJSON accepts both "key": "url" and "key": ["url", ...]
func (a *AudioFiles) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode audio files: %w", err)
	}
	*a = normalizeAudio(raw)
	return nil
}

// UnmarshalBSON accepts both single string and array values
func (a *AudioFiles) UnmarshalBSON(data []byte) error {
	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode audio files: %w", err)
	}
	*a = normalizeAudio(raw)
	return nil
}

func normalizeAudio(raw map[string]interface{}) AudioFiles {
	out := make(AudioFiles, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			if v != "" {
				out[key] = []string{v}
			}
		case []interface{}:
			out[key] = collectStrings(v)
		case primitive.A:
			out[key] = collectStrings(v)
		case []string:
			out[key] = v
		}
	}
	return out
}

func collectStrings(values []interface{}) []string {
	refs := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			refs = append(refs, s)
		}
	}
	return refs
}
