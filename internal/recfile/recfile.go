// Package recfile persists recordings as indented UTF-8 JSON files, one
// recording per file. The format is stable and human-diffable; Save followed
// by Load reconstructs the typed event variants exactly.
package recfile

import (
	"errors"
	"fmt"
	"time"
)

// Error codes for store failures.
const (
	CodeNotFound = "NOT_FOUND"
	CodeCorrupt  = "CORRUPT"
)

// StoreError is a coded recording-store failure.
type StoreError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Code, e.Message, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a missing-recording failure.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == CodeNotFound
}

// IsCorrupt reports whether err is an unparseable-recording failure.
// Uses errors.As to handle wrapped errors.
func IsCorrupt(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == CodeCorrupt
}

func notFound(path string, err error) *StoreError {
	return &StoreError{Code: CodeNotFound, Path: path, Message: "recording file not found", Err: err}
}

func corrupt(path, message string, err error) *StoreError {
	return &StoreError{Code: CodeCorrupt, Path: path, Message: message, Err: err}
}

// Filename generates the default recording filename for a wall-clock time,
// replay_YYYY-MM-DD_HH-MM-SS.json.
func Filename(t time.Time) string {
	return "replay_" + t.Format("2006-01-02_15-04-05") + ".json"
}
