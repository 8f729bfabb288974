package repository

import (
	"encoding/json"
	"fmt"
)

// withID flattens patch into a JSON object and sets its id field.
func withID(id int64, patch any) (map[string]any, error) {
	body := map[string]any{}
	if patch != nil {
		data, err := json.Marshal(patch)
		if err != nil {
			return nil, fmt.Errorf("marshal patch: %w", err)
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("patch must encode as an object: %w", err)
		}
	}
	body["id"] = id
	return body, nil
}
