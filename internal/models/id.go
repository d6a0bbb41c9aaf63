package models

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// ManualIDPrefix marks records created directly by the user, as opposed to
// aggregator-assigned identifiers.
const ManualIDPrefix = "manual_"

// NewManualID generates an identifier for a user-created account or
// transaction: "manual_" plus twelve hex characters of a random UUID.
func NewManualID() string {
	u := uuid.New()
	return ManualIDPrefix + hex.EncodeToString(u[:])[:12]
}
