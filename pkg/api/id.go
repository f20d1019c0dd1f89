package api

import (
	"errors"
	"fmt"
	"regexp"
)

type (
	// DAGID identifies a normalized workflow document
	DAGID string

	// TaskID identifies a task within a workflow
	TaskID string
)

// DAGIDPattern matches the identifiers accepted as workflow document keys.
// Valid characters are: letters, digits, underscore, dot, hyphen
var DAGIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)

var ErrInvalidDAGID = errors.New("invalid dag id")

// Validate ensures a DAG ID can be used as a storage key without escaping
// its directory
func (id DAGID) Validate() error {
	s := string(id)
	if s == "" || s == "." || s == ".." || !DAGIDPattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidDAGID, s)
	}
	return nil
}
