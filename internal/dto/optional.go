package dto

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes a field that was left out of a JSON body from
// one that was sent as null or as a value.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// Resolve returns the new value given the current one: unchanged when the
// field was absent, nil when it was cleared.
func (o OptionalString) Resolve(current *string) *string {
	if !o.Set {
		return current
	}
	return o.Value
}
