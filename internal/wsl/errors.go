package wsl

import "fmt"

// Kind classifies a discovery failure.
type Kind int

const (
	// KindStart means the subprocess could not be launched.
	KindStart Kind = iota
	// KindExit means the subprocess exited with a non-zero status.
	KindExit
	// KindEmpty means the output contained no tokens.
	KindEmpty
	// KindMalformed means the last token was not an IPv4/prefix pair.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindExit:
		return "exit"
	case KindEmpty:
		return "empty"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DiscoveryError reports why an address could not be discovered.
type DiscoveryError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *DiscoveryError) Error() string {
	return e.Message
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
