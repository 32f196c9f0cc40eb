package validation

import (
	"fmt"

	dErrors "courthouse/pkg/domain-errors"
)

// MaxBodySize bounds JSON request bodies (64 KB).
const MaxBodySize = 64 * 1024

const (
	MaxNameLength    = 128
	MaxEmailLength   = 255
	MaxPhoneLength   = 32
	MaxSummaryLength = 4096
	MaxNoteLength    = 2048
	// MaxSecretLength is bcrypt's input limit.
	MaxSecretLength = 72
	MaxPermissions  = 8
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
