package index

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when the cluster does not answer a ping.
var ErrNotConnected = errors.New("search cluster not reachable")

// ItemError is a document the cluster refused during a bulk request.
type ItemError struct {
	DocumentID string
	Status     int
	Type       string
	Reason     string
}

func (e ItemError) Error() string {
	return fmt.Sprintf("document %s: %d %s: %s", e.DocumentID, e.Status, e.Type, e.Reason)
}

// FileError is a presentation that could not be turned into records.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// responseError is a non-2xx answer from the cluster.
type responseError struct {
	op     string
	status int
	body   string
}

func (e *responseError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.op, e.status, e.body)
}
