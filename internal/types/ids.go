// Package types holds the tagged identifiers, enums, and versioned snapshot
// headers shared by every other package in the registry and workflow runtime.
package types

import "github.com/google/uuid"

// ID is an opaque 128-bit identifier. Zero value is the nil UUID and is never
// assigned to a real entity.
type ID uuid.UUID

// NewID allocates a fresh, universally unique ID.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses the canonical string form of an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID(u), nil
}

// IsZero reports whether the ID is the nil identifier.
func (id ID) IsZero() bool {
	return id == ID{}
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// MarshalText implements encoding.TextMarshaler so IDs serialize as their
// canonical string form in JSON and YAML.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
