package livelog

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by construction-time validation.
var (
	// ErrNoFormatter indicates a nil Formatter was registered or configured.
	ErrNoFormatter = errors.New("livelog: formatter is nil")

	// ErrEmptyEnvName indicates an empty environment variable name in the
	// level env list or one of the well-known env names.
	ErrEmptyEnvName = errors.New("livelog: empty environment variable name")

	// ErrDuplicateFormat indicates a formatter name is already registered.
	ErrDuplicateFormat = errors.New("livelog: format already registered")
)

// InvalidLevelError reports an unknown level name.
type InvalidLevelError struct {
	Name  string
	Valid []string
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("there is no such log level: '%s'. Available levels: [ %s ]",
		e.Name, strings.Join(e.Valid, ", "))
}

// UnknownFormatError reports a format name missing from the registry.
type UnknownFormatError struct {
	Name      string
	Available []string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("there is no such log format: '%s'. Available formats: [ %s ]",
		e.Name, strings.Join(e.Available, ", "))
}
