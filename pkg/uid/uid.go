// Package uid generates the identifiers used for inventory items, vault
// entries and time records. Devices may also mint IDs offline and push
// them through sync, so validation lives here too.
package uid

import "github.com/google/uuid"

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// IsValid reports whether id is a well-formed identifier, used to vet
// IDs arriving from device sync payloads.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
