package model

import (
	"encoding/json"
)

// Field is a tri-state JSON value for partial updates. It distinguishes a key
// that was absent from the payload from one that was explicitly null.
type Field[T any] struct {
	Set   bool // key was present in the payload
	Valid bool // value was non-null
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// TaskPatch carries the mutable task fields of an update request.
type TaskPatch struct {
	Title       Field[string] `json:"title"`
	Description Field[string] `json:"description"`
	Status      Field[string] `json:"status"`
	DueDate     Field[string] `json:"dueDate"`
}
