package common

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrFormat MUST be returned when a container header, directory or declaration
// is malformed. It is fatal to the load in progress.
var ErrFormat = errors.New("malformed data")

// ErrIntegrity MUST be returned when decoded data contradicts its declared
// envelope: decompressed byte count mismatch, overlapping payloads and so on.
var ErrIntegrity = errors.New("integrity violation")

// ErrUnsupported is returned for declaration or container versions newer than
// the ones this package understands.
var ErrUnsupported = errors.New("unsupported")

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// ErrDependency is matched by every DependencyError.
var ErrDependency = errors.New("unknown dependency")

// ErrDepthExceeded is matched by every DepthExceededError.
var ErrDepthExceeded = errors.New("dependency depth exceeded")

// Formatf returns ErrFormat wrapped with formatted details.
func Formatf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// Integrityf returns ErrIntegrity wrapped with formatted details.
func Integrityf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIntegrity, fmt.Sprintf(format, args...))
}

// Unsupportedf returns ErrUnsupported wrapped with formatted details.
func Unsupportedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

// NotFoundError describes an absent asset record or database.
//
// Asset lookups fill Kind and ID, database lookups fill Path.
type NotFoundError struct {
	Kind string
	ID   uint32
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		if e.Kind != "" {
			return fmt.Sprintf("%s %s not found", e.Kind, e.Path)
		}
		return fmt.Sprintf("%s not found", e.Path)
	}

	return fmt.Sprintf("%s 0x%x not found", e.Kind, e.ID)
}

// Is implements errors.Is interface.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DependencyError is returned when an asset reference points to a dependency
// index that is not present in the resolving database.
type DependencyError struct {
	Index    uint32
	Database string
}

func (e *DependencyError) Error() string {
	return "dependency index " + strconv.FormatUint(uint64(e.Index), 10) +
		" is not declared by " + e.Database
}

// Is implements errors.Is interface.
func (e *DependencyError) Is(target error) bool {
	return target == ErrDependency
}

// DepthExceededError is returned when dependency loading recursion goes deeper
// than allowed. It usually signals a dependency cycle.
type DepthExceededError struct {
	Path  string
	Depth int
	Max   int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("dependency depth %d exceeds limit %d at %s", e.Depth, e.Max, e.Path)
}

// Is implements errors.Is interface.
func (e *DepthExceededError) Is(target error) bool {
	return target == ErrDepthExceeded
}
