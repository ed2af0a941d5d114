package domain

import (
	"errors"
	"strconv"
)

// Domain Errors
var (
	ErrVulnerabilityNotFound = errors.New("vulnerability not found")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrInvalidConfiguration  = errors.New("invalid scoring configuration")
	ErrInvalidRating         = errors.New("rating must be between 0 and 10")
	ErrContentRequired       = errors.New("content is required")
	ErrAuthorRequired        = errors.New("author is required")
)

// ValidationError carries the user-facing reason a configuration write was
// rejected. It matches ErrInvalidConfiguration under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// UnknownVulnerabilityError is returned when a comment references a
// vulnerability id that is not in the store.
type UnknownVulnerabilityError struct {
	ID int64
}

func (e *UnknownVulnerabilityError) Error() string {
	return "Vulnerability with ID " + strconv.FormatInt(e.ID, 10) + " does not exist"
}

func (e *UnknownVulnerabilityError) Is(target error) bool {
	return target == ErrVulnerabilityNotFound
}
