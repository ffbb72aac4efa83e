package service

import "errors"

// Validation and referential failures. Operations returning one of these
// have written nothing.
var (
	ErrTitleRequired           = errors.New("title is required")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidPriority         = errors.New("invalid priority")
	ErrReporterNotFound        = errors.New("reporter not found")
	ErrAssigneeNotFound        = errors.New("assignee not found")
	ErrProjectNotFound         = errors.New("project not found")
	ErrProjectTaskNotFound     = errors.New("project task not found")
	ErrIndependentTaskNotFound = errors.New("independent task not found")
)

var validationErrors = []error{
	ErrTitleRequired,
	ErrInvalidStatus,
	ErrInvalidPriority,
	ErrReporterNotFound,
	ErrAssigneeNotFound,
	ErrProjectNotFound,
	ErrProjectTaskNotFound,
	ErrIndependentTaskNotFound,
}

// IsValidationError reports whether err rejects the caller's input, as opposed
// to a persistence failure.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
