// Package model mirrors the remote sensor table.
package model

import "encoding/json"

// SensorRow mirrors the remote 'sensor' table.  Only the status column is
// written by this service; every other column is left to the database.
//
// Fields:
//
//	ID     – primary key identifier.
//	Status – last status reported by the device (e.g. "parked", "free").
//	         Nil when the column holds NULL.
type SensorRow struct {
	ID     int64   `json:"id"`     // sensor.id
	Status *string `json:"status"` // sensor.status
}

// Status is the optional value taken from the ?status= query parameter.  A
// request without the parameter yields an absent Status, which is written
// to the database as NULL; a present empty parameter is written as "".
type Status struct {
	value   string
	present bool
}

// StatusOf returns a present Status holding v verbatim.
func StatusOf(v string) Status { return Status{value: v, present: true} }

// NoStatus returns the absent Status.
func NoStatus() Status { return Status{} }

// Value returns the raw string and whether it was supplied at all.
func (s Status) Value() (string, bool) { return s.value, s.present }

// Present reports whether the parameter was supplied.
func (s Status) Present() bool { return s.present }

// String renders the value for logs; absent values print as <absent>.
func (s Status) String() string {
	if !s.present {
		return "<absent>"
	}
	return s.value
}

// MarshalJSON encodes an absent Status as null and a present one as a
// JSON string.
func (s Status) MarshalJSON() ([]byte, error) {
	if !s.present {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *Status) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = NoStatus()
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = StatusOf(v)
	return nil
}
