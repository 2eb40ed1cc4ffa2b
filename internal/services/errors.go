// Package services defines the business logic for vocabulary records.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Vocabulary-related errors.
var (
	// ErrMissingTerm is returned when a create or edit request leaves the
	// English or Vietnamese text empty.
	ErrMissingTerm = errors.New("english and vietnamese are required")

	// ErrEmptyIDs is returned when a batch or delete request carries no ids.
	ErrEmptyIDs = errors.New("ids must not be empty")

	// ErrInvalidIDs is returned when an id list contains blank entries.
	ErrInvalidIDs = errors.New("ids must be non-empty strings")

	// ErrEmptyStep is returned when a review request carries no step.
	ErrEmptyStep = errors.New("step is required")

	// ErrInvalidStep is returned when a step label is too long for storage
	// or schedules further out than schedule.MaxDays.
	ErrInvalidStep = errors.New("step must be at most 16 characters and schedule at most 36500 days ahead")

	// ErrInvalidTarget is returned when a supplied target is not a
	// YYYY-MM-DD calendar date.
	ErrInvalidTarget = errors.New("target must be a YYYY-MM-DD date")

	// ErrVocabularyNotFound indicates that the requested record does not exist.
	ErrVocabularyNotFound = errors.New("vocabulary not found")
)

// IsValidation reports whether err is one of the input validation errors
// above (as opposed to not-found or a store failure).
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrMissingTerm),
		errors.Is(err, ErrEmptyIDs),
		errors.Is(err, ErrInvalidIDs),
		errors.Is(err, ErrEmptyStep),
		errors.Is(err, ErrInvalidStep),
		errors.Is(err, ErrInvalidTarget):
		return true
	}
	return false
}
