package utils

import "errors"

var (
	ErrorRecordNotFound  = errors.New("record not found")
	ErrorBusinessMissing = errors.New("business id missing from context")
	ErrorLockNotObtained = errors.New("resource is busy, try again")
	ErrorDuplicate       = errors.New("duplicate")
)
