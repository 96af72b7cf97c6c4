package hosts

import (
	"errors"
	"fmt"
)

// ErrNotWritable is wrapped by WriteError when the access probe reports the
// target file as not writable by this process.
var ErrNotWritable = errors.New("insufficient access")

// ReadError reports a failure to open or read the hosts file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("unable to read file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError reports a failure to create or write the hosts file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("unable to write file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
