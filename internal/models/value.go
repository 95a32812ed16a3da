package models

import (
	"bytes"
	"fmt"
)

// Value is an attribute value: either plain text or a structured record.
type Value struct {
	text   string
	record map[string]any
}

// Text wraps a string value.
func Text(s string) Value { return Value{text: s} }

// Record wraps a structured value. The map is copied.
func Record(m map[string]any) Value {
	if m == nil {
		return Value{}
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{record: cp}
}

// IsRecord reports whether the value is structured.
func (v Value) IsRecord() bool { return v.record != nil }

// Fields returns a copy of the structured value, or nil for text.
func (v Value) Fields() map[string]any {
	if v.record == nil {
		return nil
	}
	cp := make(map[string]any, len(v.record))
	for k, val := range v.record {
		cp[k] = val
	}
	return cp
}

// IsEmpty reports whether the value carries nothing worth displaying.
func (v Value) IsEmpty() bool {
	if v.record != nil {
		return len(v.record) == 0
	}
	return v.text == ""
}

// String returns the text, or compact JSON with sorted keys for records.
func (v Value) String() string {
	if v.record == nil {
		return v.text
	}
	data, err := json.Marshal(v.record)
	if err != nil {
		return fmt.Sprintf("%v", v.record)
	}
	return string(data)
}

// Equal reports whether both values stringify identically.
func (v Value) Equal(o Value) bool {
	return v.IsRecord() == o.IsRecord() && v.String() == o.String()
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.record != nil {
		return json.Marshal(v.record)
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*v = Value{record: m}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Value{text: s}
	return nil
}
