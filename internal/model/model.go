// Package model defines the entities managed by the collaborating stores.
// The history engine never sees these types directly; commands carry
// field maps produced by their Fields helpers.
package model

import "encoding/json"

// Model is implemented by every persistable entity.
type Model interface {
	GetKey() string
	SetKey(key string)
}

// toFields converts an entity to the JSON-shaped field map commands
// operate on.
func toFields(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// fromFields populates an entity from a field map.
func fromFields(m map[string]any, v any) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, v)
}
