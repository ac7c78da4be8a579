package registry

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// repoPattern matches "owner/repo" with the characters the hosting service allows.
var repoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*/[A-Za-z0-9._-]+$`)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
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

// AddError appends a validation error.
func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
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

// ValidateRegistry validates every descriptor in r.
func ValidateRegistry(r Registry) *ValidationResult {
	result := &ValidationResult{}
	for _, name := range r.Names() {
		validateDescriptor(result, r[name])
	}
	return result
}

func validateDescriptor(result *ValidationResult, d Descriptor) {
	prefix := fmt.Sprintf("skills.%s.", d.Name)

	if strings.TrimSpace(d.Name) == "" {
		result.AddError("skills", "contains an entry with an empty name")
	}

	if d.Repo == "" {
		result.AddError(prefix+"repo", "is required")
	} else if !repoPattern.MatchString(d.Repo) {
		result.AddError(prefix+"repo", "must be in owner/repo form")
	}

	if d.SourcePath == "" {
		result.AddError(prefix+"source_path", "is required")
	} else if escapes(d.SourcePath) {
		result.AddError(prefix+"source_path", "must be a relative path inside the repository")
	}

	if d.TargetDir == "" {
		result.AddError(prefix+"target_dir", "is required")
	} else if strings.ContainsAny(d.TargetDir, `/\`) || d.TargetDir == "." || d.TargetDir == ".." {
		result.AddError(prefix+"target_dir", "must be a single folder name")
	}
}

// escapes reports whether p is absolute or climbs above its root.
func escapes(p string) bool {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return true
	}
	clean := path.Clean(strings.ReplaceAll(p, `\`, "/"))
	return clean == ".." || strings.HasPrefix(clean, "../")
}
