package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ActiveState is a unit's activation flag. An absent flag stays Unknown
// instead of being read as inactive.
type ActiveState int8

const (
	ActiveUnknown ActiveState = iota
	ActiveYes
	ActiveNo
)

// ActiveFromBool converts a known flag.
func ActiveFromBool(b bool) ActiveState {
	if b {
		return ActiveYes
	}
	return ActiveNo
}

// Known reports whether the flag was ever set.
func (a ActiveState) Known() bool { return a != ActiveUnknown }

// Bool returns the flag and whether it is known.
func (a ActiveState) Bool() (active, known bool) {
	return a == ActiveYes, a.Known()
}

func (a ActiveState) String() string {
	switch a {
	case ActiveYes:
		return "active"
	case ActiveNo:
		return "inactive"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Unknown as null.
func (a ActiveState) MarshalJSON() ([]byte, error) {
	switch a {
	case ActiveYes:
		return []byte("true"), nil
	case ActiveNo:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false and null.
func (a *ActiveState) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "true":
		*a = ActiveYes
	case "false":
		*a = ActiveNo
	case "null":
		*a = ActiveUnknown
	default:
		return fmt.Errorf("domain: active flag must be a boolean or null, got %s", b)
	}
	return nil
}

var _ json.Marshaler = ActiveState(0)

// Department groups stations.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RefID implements Identifiable.
func (d Department) RefID() string { return d.ID }

// Station is a fire station inside a department.
type Station struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id,omitempty"`
}

// RefID implements Identifiable.
func (s Station) RefID() string { return s.ID }

// Unit is an appliance crew attached to a station.
type Unit struct {
	ID           string
	Callsign     string
	StationID    string
	DepartmentID string
	Active       ActiveState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefID implements Identifiable.
func (u Unit) RefID() string { return u.ID }
