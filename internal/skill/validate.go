package skill

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxNameLength        = 64
	maxDescriptionLength = 1024
)

// namePattern matches lowercase alphanumeric with single hyphens between words
var namePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidationResult holds validation errors.
type ValidationResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error implements the error interface.
func (r *ValidationResult) Error() string {
	if len(r.Errors) == 0 {
		return ""
	}

	var messages []string
	for _, err := range r.Errors {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("validation failed with %d error(s):\n  - %s",
		len(r.Errors), strings.Join(messages, "\n  - "))
}

// Add appends a validation error.
func (r *ValidationResult) Add(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// Validate checks the manifest fields Claude Code relies on.
func (s *Skill) Validate() *ValidationResult {
	result := &ValidationResult{}

	switch {
	case s.Name == "":
		result.Add("name", "is required")
	case len(s.Name) > maxNameLength:
		result.Add("name", fmt.Sprintf("must be %d characters or less", maxNameLength))
	case !namePattern.MatchString(s.Name):
		result.Add("name", "must be lowercase alphanumeric with hyphens")
	}

	switch {
	case strings.TrimSpace(s.Description) == "":
		result.Add("description", "is required")
	case len(s.Description) > maxDescriptionLength:
		result.Add("description", fmt.Sprintf("must be %d characters or less", maxDescriptionLength))
	}

	if strings.TrimSpace(s.Body) == "" {
		result.Add("", "instructions are empty")
	}

	return result
}
