package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewTransferID returns a fresh wallet transfer identifier: a random
// UUID rendered as 32 lowercase hex characters.
func NewTransferID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidTransferID reports whether s has the shape produced by NewTransferID.
func ValidTransferID(s string) bool {
	if len(s) != 32 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
