package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a list column persisted as JSON text.
// Empty lists are written as "[]"; NULL, blank or malformed input reads back as an empty list.
type StringList []string

// DecodeStringList parses raw JSON into a list, falling back to an empty list.
func DecodeStringList(raw []byte) StringList {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return StringList{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return StringList{}
	}
	return StringList(out)
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("encode string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		*l = DecodeStringList(v)
	case string:
		*l = DecodeStringList([]byte(v))
	default:
		*l = StringList{}
	}
	return nil
}

// GormDataType keeps the column portable across postgres and sqlite.
func (StringList) GormDataType() string {
	return "text"
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}
