// Package errors provides structured error types for kudosx.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes for kudosx operations.
const (
	// Config errors
	CodeConfigMissingField = "CONFIG_001" // Missing required field
	CodeConfigInvalidValue = "CONFIG_002" // Invalid value

	// Registry errors
	CodeRegistryUnavailable = "REGISTRY_UNAVAILABLE" // Remote registry could not be fetched
	CodeRegistryInvalid     = "REGISTRY_INVALID"     // Registry document could not be parsed
	CodeUnknownSkill        = "UNKNOWN_SKILL"        // Name absent from the merged registry

	// Version errors
	CodeVersionUnresolvable = "VERSION_UNRESOLVABLE" // No declared version and tag lookup failed

	// Install errors
	CodeDownloadFailed   = "INSTALL_DOWNLOAD_FAILED"
	CodeExtractFailed    = "INSTALL_EXTRACT_FAILED"
	CodeMalformedArchive = "INSTALL_MALFORMED_ARCHIVE"
	CodeSubpathNotFound  = "INSTALL_SUBPATH_NOT_FOUND"
	CodeRemovalFailed    = "INSTALL_REMOVAL_FAILED"
	CodeCopyFailed       = "INSTALL_COPY_FAILED"
	CodeNotInstalled     = "NOT_INSTALLED"
	CodeAlreadyInstalled = "ALREADY_INSTALLED"

	// IO errors
	CodeIOFileNotFound = "IO_001" // File not found
	CodeIOReadError    = "IO_004" // Read error
	CodeIOWriteError   = "IO_005" // Write error

	// Command errors
	CodeUsage          = "USAGE"           // Missing or conflicting arguments
	CodeTemplateExists = "TEMPLATE_EXISTS" // Init target already exists
)

// Process exit codes used by the command layer.
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitNotInstalled     = 2
	ExitUnknownSkill     = 3
	ExitInstallFailed    = 4
	ExitAlreadyInstalled = 5
)

// KudosError is the structured error type for kudosx operations.
type KudosError struct {
	Code    string         `json:"code"`              // Error code (e.g., "NOT_INSTALLED")
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Context (skill, repo, path, ...)
	Cause   error          `json:"-"`                 // Wrapped error (not serialized)
}

// Error implements the error interface.
func (e *KudosError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *KudosError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error.
func (e *KudosError) WithDetail(key string, value any) *KudosError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *KudosError) WithCause(err error) *KudosError {
	e.Cause = err
	return e
}

// MarshalJSON implements json.Marshaler with cause error message.
func (e *KudosError) MarshalJSON() ([]byte, error) {
	type alias KudosError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// New creates a new KudosError.
func New(code, message string) *KudosError {
	return &KudosError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new KudosError with formatted message.
func Newf(code, format string, args ...any) *KudosError {
	return &KudosError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a KudosError.
func Wrap(code, message string, err error) *KudosError {
	return &KudosError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted KudosError.
func Wrapf(code string, err error, format string, args ...any) *KudosError {
	return &KudosError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// --- Config Errors ---

// ConfigMissingField creates an error for missing config field.
func ConfigMissingField(field string) *KudosError {
	return Newf(CodeConfigMissingField, "missing required config field: %s", field).
		WithDetail("field", field)
}

// ConfigInvalidValue creates an error for invalid config value.
func ConfigInvalidValue(field string, value any, reason string) *KudosError {
	return Newf(CodeConfigInvalidValue, "invalid config value for %s: %s", field, reason).
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("reason", reason)
}

// --- Registry Errors ---

// RegistryUnavailable creates an error for a remote registry that could not be loaded.
func RegistryUnavailable(url string, err error) *KudosError {
	return Wrap(CodeRegistryUnavailable, "remote registry unavailable", err).
		WithDetail("url", url)
}

// RegistryInvalid creates an error for an unparsable registry document.
func RegistryInvalid(source string, err error) *KudosError {
	return Wrap(CodeRegistryInvalid, "invalid registry document", err).
		WithDetail("source", source)
}

// UnknownSkill creates an error for a name missing from the registry.
// The available names are listed in the message.
func UnknownSkill(name string, available []string) *KudosError {
	names := append([]string(nil), available...)
	sort.Strings(names)
	return Newf(CodeUnknownSkill, "unknown skill %q (available skills: %s)", name, strings.Join(names, ", ")).
		WithDetail("skill", name).
		WithDetail("available", names)
}

// --- Version Errors ---

// VersionUnresolvable creates an error for a repository whose latest version is unknown.
func VersionUnresolvable(repo string, err error) *KudosError {
	return Wrapf(CodeVersionUnresolvable, err, "could not resolve latest version of %s", repo).
		WithDetail("repo", repo)
}

// --- Install Errors ---

// DownloadFailed creates an error for a failed archive download.
func DownloadFailed(repo, url string, err error) *KudosError {
	return Wrapf(CodeDownloadFailed, err, "failed to download %s", repo).
		WithDetail("repo", repo).
		WithDetail("url", url)
}

// ExtractFailed creates an error for a corrupt archive.
func ExtractFailed(repo string, err error) *KudosError {
	return Wrapf(CodeExtractFailed, err, "failed to extract archive of %s", repo).
		WithDetail("repo", repo)
}

// MalformedArchive creates an error for an archive without a single top-level directory.
func MalformedArchive(repo string, found int) *KudosError {
	return Newf(CodeMalformedArchive, "archive of %s has %d top-level directories, want 1", repo, found).
		WithDetail("repo", repo).
		WithDetail("found", found)
}

// SubpathNotFound creates an error for a payload missing from a valid archive.
func SubpathNotFound(repo, subpath string) *KudosError {
	return Newf(CodeSubpathNotFound, "skill folder not found at %q in %s", subpath, repo).
		WithDetail("repo", repo).
		WithDetail("source_path", subpath)
}

// RemovalFailed creates an error for a target that could not be removed or replaced.
func RemovalFailed(path string, err error) *KudosError {
	return Wrap(CodeRemovalFailed, "failed to remove installed skill", err).
		WithDetail("path", path)
}

// CopyFailed creates an error for a payload that could not be staged on disk.
func CopyFailed(path string, err error) *KudosError {
	return Newf(CodeCopyFailed, "failed to stage skill files at %s", path).
		WithDetail("path", path).
		WithCause(err)
}

// NotInstalled creates an error for an operation on a missing installation.
func NotInstalled(name, path string) *KudosError {
	return Newf(CodeNotInstalled, "skill %q is not installed at %s", name, path).
		WithDetail("skill", name).
		WithDetail("path", path)
}

// AlreadyInstalled creates an error for an install over an existing target.
func AlreadyInstalled(name, path string) *KudosError {
	return Newf(CodeAlreadyInstalled, "skill %q already installed at %s (use --force to reinstall)", name, path).
		WithDetail("skill", name).
		WithDetail("path", path)
}

// --- IO Errors ---

// IOFileNotFound creates an error for missing file.
func IOFileNotFound(path string) *KudosError {
	return Newf(CodeIOFileNotFound, "file not found: %s", path).
		WithDetail("path", path)
}

// IOReadError creates an error for read failures.
func IOReadError(path string, err error) *KudosError {
	return Wrap(CodeIOReadError, "failed to read file", err).
		WithDetail("path", path)
}

// IOWriteError creates an error for write failures.
func IOWriteError(path string, err error) *KudosError {
	return Wrap(CodeIOWriteError, "failed to write file", err).
		WithDetail("path", path)
}

// HasCode checks if an error is a KudosError with the given code.
// It handles wrapped errors by unwrapping to find a KudosError.
func HasCode(err error, code string) bool {
	var kerr *KudosError
	if errors.As(err, &kerr) {
		return kerr.Code == code
	}
	return false
}

// Code returns the error code if err is a KudosError, empty string otherwise.
// It handles wrapped errors by unwrapping to find a KudosError.
func Code(err error) string {
	var kerr *KudosError
	if errors.As(err, &kerr) {
		return kerr.Code
	}
	return ""
}

// IsInstallError reports whether err belongs to the install failure family.
func IsInstallError(err error) bool {
	switch Code(err) {
	case CodeDownloadFailed, CodeExtractFailed, CodeMalformedArchive,
		CodeSubpathNotFound, CodeRemovalFailed, CodeCopyFailed:
		return true
	}
	return false
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch code := Code(err); {
	case code == CodeNotInstalled:
		return ExitNotInstalled
	case code == CodeUnknownSkill:
		return ExitUnknownSkill
	case code == CodeAlreadyInstalled:
		return ExitAlreadyInstalled
	case IsInstallError(err):
		return ExitInstallFailed
	}
	return ExitFailure
}
