// Package uuid generates time-ordered identifiers for database keys.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. Version 7 embeds a millisecond Unix
// timestamp in the high bits, so freshly inserted rows sort roughly by
// creation time and keep b-tree inserts append-mostly.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4
		// rather than surfacing an error from a key generator.
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid reports whether s parses as any RFC 4122 UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
