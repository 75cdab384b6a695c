package domain

import "encoding/json"

// Optional distinguishes an absent JSON field from an explicit null, which
// plain pointers cannot: both decode to nil. Set is true when the field was
// present at all; Valid is true when it carried a non-null value.
type Optional[T any] struct {
	Value T
	Set   bool
	Valid bool
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		return nil
	}
	o.Valid = true
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns the value as a pointer, nil when absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.Set || !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
